package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/petal-labs/appforge/web"
)

const shutdownTimeout = 10 * time.Second

type serveFlags struct {
	addr      string
	maxDim    int
	maxBuilds int
}

func (a *App) newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser front-end",
		Long: `Serve the browser front-end. The page offers Show and Tell tabs, the bundled
examples and live streaming of the generated app.

Without an API key the page loads but the Build button stays disabled.`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}
	cmd.Flags().StringVar(&a.serve.addr, "addr", "", "listen address (default from config, :8501)")
	cmd.Flags().IntVar(&a.serve.maxDim, "max-dim", -1, "longest image side in pixels before upload, 0 disables (-1 = config default)")
	cmd.Flags().IntVar(&a.serve.maxBuilds, "max-builds", web.DefaultMaxBuilds, "builds streaming at once across all browser sessions")
	return cmd
}

func (a *App) runServe(cmd *cobra.Command, args []string) error {
	addr := a.serve.addr
	if addr == "" {
		addr = a.cfg.Serve.Addr
	}

	b, err := a.newBuilder(0, "", a.serve.maxDim)
	if err != nil {
		return a.handleError(err)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return a.handleError(exitWithCode(ExitValidation, err))
	}
	return a.serveOn(cmd.Context(), ln, web.New(b,
		web.WithLogger(a.log),
		web.WithMaxBuilds(a.serve.maxBuilds),
	))
}

// serveOn serves h on ln until ctx is done, then shuts down gracefully.
func (a *App) serveOn(ctx context.Context, ln net.Listener, h *web.Server) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.WithField("url", "http://"+ln.Addr().String()).Info("serving")
	if !a.jsonOutput {
		fmt.Fprintf(a.stdout, "Open http://%s in your browser.\n", displayAddr(ln.Addr()))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			a.log.Info("shutting down")
		}
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return a.handleError(exitWithCode(ExitNetwork, err))
	}
	return nil
}

// displayAddr replaces an unspecified host with localhost.
func displayAddr(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok || !tcp.IP.IsUnspecified() {
		return addr.String()
	}
	return fmt.Sprintf("localhost:%d", tcp.Port)
}
