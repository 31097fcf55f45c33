/*
Package runner holds the pieces shared by every transport that feeds user text
into the engine: the input Sanitizer and a line-oriented Runner used by the
terminal chat.

# Usage

	r := runner.NewRunner(
		runner.WithIO(os.Stdin, os.Stdout),
		runner.WithRenderer(renderer.Render),
	)

	err := r.Run(ctx, func(ctx context.Context, text string) (string, error) {
		payload, err := engine.HandleTurn(ctx, sessionID, text)
		if err != nil {
			return "", err
		}
		return payload.Reply, nil
	})
*/
package runner
