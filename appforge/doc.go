// Package appforge turns a mock-up image or a text description into the
// source code of a Streamlit app.
//
// A build runs one pipeline: Compose builds the message list from an Input,
// a Builder streams the completion from a chat provider and hands each
// delta to the caller as a Fragment, and ExtractCode pulls the fenced code
// block out of the finished response.
//
//	provider := openai.New(apiKey)
//	b := appforge.NewBuilder(core.NewClient(provider), appforge.WithAPIKey(core.NewSecret(apiKey)))
//
//	res, err := b.Build(ctx, appforge.Input{Mode: appforge.ModeTell, Text: "a todo list"},
//		func(f appforge.Fragment) { fmt.Print(f.Delta) })
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Code)
package appforge
