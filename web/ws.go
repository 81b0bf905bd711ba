package web

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/petal-labs/appforge/appforge"
)

// Frame types sent to the browser.
const (
	frameWarning  = "warning"
	frameFragment = "fragment"
	frameDone     = "done"
	frameError    = "error"
)

const (
	missingKeyWarning = "Please add your OpenAI API key to continue."
	noImageWarning    = "Please upload an image or pick an example."
	emptyTextWarning  = "Please describe the app you want."
	noCodeWarning     = "The response did not contain a code block."
	busyWarning       = "A build is already running."
	cancelledWarning  = "Build cancelled."
)

// request is a client message. Type is "build" (the default) or "cancel".
type request struct {
	Type    string       `json:"type,omitempty"`
	Mode    string       `json:"mode"`
	Text    string       `json:"text,omitempty"`
	Example string       `json:"example,omitempty"`
	Image   *imageUpload `json:"image,omitempty"`
}

type imageUpload struct {
	Name string `json:"name"`
	// Data is base64, optionally as a data URL.
	Data string `json:"data"`
}

type frame struct {
	Type string `json:"type"`
	Data string `json:"data,omitempty"`
	HTML string `json:"html,omitempty"`
	Code string `json:"code,omitempty"`
}

// conn serializes writes to a websocket and tracks its running build.
type conn struct {
	ws  *websocket.Conn
	log log.Interface

	writeMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (c *conn) send(f frame) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(f)
}

// start marks a build as running. It returns false when one already is.
func (c *conn) start(cancel context.CancelFunc) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return false
	}
	c.cancel = cancel
	return true
}

// stop cancels the running build, if any. The slot stays taken until the
// build goroutine calls finish.
func (c *conn) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// finish sends the frames that end a build and frees the slot. Holding mu
// while sending keeps a following build's frames behind them.
func (c *conn) finish(final []frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range final {
		c.send(f)
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer ws.Close()
	ws.SetReadLimit(s.maxUpload)

	s.wg.Add(1)
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	c := &conn{
		ws:  ws,
		log: s.log.WithField("session", uuid.NewString()),
	}
	c.log.WithField("remote", r.RemoteAddr).Info("connected")
	defer c.log.Info("disconnected")

	// Unblock the read loop when the server shuts down.
	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	if err := s.builder.Ready(); err != nil {
		c.send(frame{Type: frameWarning, Data: missingKeyWarning})
	}

	var builds sync.WaitGroup
	defer builds.Wait()
	defer c.stop()

	for {
		var req request
		if err := ws.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				c.log.WithError(err).Debug("read")
			}
			return
		}

		switch req.Type {
		case "", "build":
		case "cancel":
			c.stop()
			continue
		default:
			c.send(frame{Type: frameError, Data: "unknown request type " + req.Type})
			continue
		}

		buildCtx, buildCancel := context.WithCancel(ctx)
		if !c.start(buildCancel) {
			buildCancel()
			c.send(frame{Type: frameWarning, Data: busyWarning})
			continue
		}

		builds.Add(1)
		go func() {
			defer builds.Done()
			c.finish(s.build(buildCtx, c, req))
		}()
	}
}

// build streams fragments to c and returns the frames that end the build.
func (s *Server) build(ctx context.Context, c *conn, req request) []frame {
	in, err := inputFrom(req)
	if err != nil {
		return []frame{errFrame(err)}
	}

	entry := c.log.WithField("mode", string(in.Mode))

	// Requests that cannot start get their warning without waiting for a slot.
	if err := s.builder.Check(in); err != nil {
		return []frame{errFrame(err)}
	}

	// Wait for a free slot before calling the provider.
	if err := s.builds.Acquire(ctx, 1); err != nil {
		return []frame{errFrame(err)}
	}
	defer s.builds.Release(1)
	entry.Info("build started")

	run, err := s.builder.Stream(ctx, in)
	if err != nil {
		entry.WithError(err).Warn("build rejected")
		return []frame{errFrame(err)}
	}

	for f := range run.Fragments() {
		if err := c.send(frame{Type: frameFragment, Data: f.Delta}); err != nil {
			break
		}
	}

	var final []frame
	res, err := run.Wait()
	if res != nil {
		entry = entry.WithFields(log.Fields{
			"id":     res.ID,
			"tokens": res.Usage.TotalTokens,
		})
		final = append(final, frame{
			Type: frameDone,
			Data: res.Response,
			HTML: renderMarkdown(res.Response),
			Code: res.Code,
		})
	}
	if err != nil {
		entry.WithError(err).Warn("build failed")
		return append(final, errFrame(err))
	}
	entry.Info("build finished")
	return final
}

// errFrame reports err as a warning for input problems and as an error otherwise.
func errFrame(err error) frame {
	switch {
	case errors.Is(err, appforge.ErrMissingAPIKey):
		return frame{Type: frameWarning, Data: missingKeyWarning}
	case errors.Is(err, appforge.ErrNoImage):
		return frame{Type: frameWarning, Data: noImageWarning}
	case errors.Is(err, appforge.ErrEmptyText):
		return frame{Type: frameWarning, Data: emptyTextWarning}
	case errors.Is(err, appforge.ErrUnsupportedImage), errors.Is(err, appforge.ErrVisionUnsupported):
		return frame{Type: frameWarning, Data: err.Error()}
	case errors.Is(err, appforge.ErrNoCodeBlock):
		return frame{Type: frameWarning, Data: noCodeWarning}
	case errors.Is(err, context.Canceled):
		return frame{Type: frameWarning, Data: cancelledWarning}
	default:
		return frame{Type: frameError, Data: "An error occurred: " + err.Error()}
	}
}

// inputFrom turns a client request into a build input. An example takes
// precedence over an uploaded image.
func inputFrom(req request) (appforge.Input, error) {
	mode, err := appforge.ParseMode(req.Mode)
	if err != nil {
		return appforge.Input{}, err
	}
	in := appforge.Input{Mode: mode, Text: req.Text}
	if mode != appforge.ModeShow {
		return in, nil
	}

	switch {
	case req.Example != "":
		in.Image, err = appforge.LoadExample(req.Example)
	case req.Image != nil && req.Image.Data != "":
		in.Image, err = decodeUpload(req.Image)
	}
	return in, err
}

func decodeUpload(up *imageUpload) (*appforge.Image, error) {
	data := up.Data
	if strings.HasPrefix(data, "data:") {
		if _, after, ok := strings.Cut(data, ","); ok {
			data = after
		}
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.Join(appforge.ErrUnsupportedImage, err)
	}
	return appforge.LoadImage(up.Name, raw)
}
