package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/portfolio/internal/client/upload"
)

// ErrUploadFailed wraps the message of an upload that did not complete.
var ErrUploadFailed = errors.New("upload failed")

// Upload sends data to the relay, drawing progress on the App's output,
// and returns the public URL of the stored file.
func (a *App) Upload(ctx context.Context, name string, data []byte) (string, error) {
	endpoint, err := a.endpoint("api", "admin", "uploads")
	if err != nil {
		return "", err
	}

	var link string
	session := upload.NewSession(upload.DestinationFunc(func(u string) { link = u }), a.config.ResetDelay, a.logger)
	bar := newProgress(a.out, terminalWidth())
	session.OnChange(bar.render)

	u := upload.NewUploader(a.client, endpoint, session, a.logger)
	defer u.Close()

	if err := u.Start(ctx, name, data); err != nil {
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, session.Snapshot().ErrorMessage)
	}
	u.Wait()

	final, ok := bar.final()
	switch {
	case !ok:
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: upload did not finish", ErrUploadFailed)
	case final.Status == upload.StatusError:
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, final.ErrorMessage)
	}
	return link, nil
}
