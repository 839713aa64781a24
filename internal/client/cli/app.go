package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/portfolio/internal/client/config"
	"github.com/dmitrijs2005/portfolio/internal/client/upload"
	"github.com/dmitrijs2005/portfolio/internal/common"
	"github.com/dmitrijs2005/portfolio/internal/logging"
)

// ErrNoFile is returned by Run when no file argument was given.
var ErrNoFile = errors.New("no file to upload, usage: portfolio-cli [-s server] [-e email] <file>")

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// App is one invocation of the upload client.
type App struct {
	config *config.Config
	client *http.Client
	reader *bufio.Reader
	out    io.Writer
	logger logging.Logger
}

// NewApp builds an App whose HTTP client keeps cookies between requests, so
// the session issued at login is sent with the upload.
func NewApp(c *config.Config, out io.Writer, logger logging.Logger) (*App, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &App{
		config: c,
		client: &http.Client{Jar: jar},
		reader: bufio.NewReader(os.Stdin),
		out:    out,
		logger: logger.With("module", "cli"),
	}, nil
}

// Run reads the configured file, asks for credentials, signs in and uploads
// the file. It prints the public URL on success.
func (a *App) Run(ctx context.Context) error {
	if a.config.File == "" {
		return ErrNoFile
	}

	data, err := os.ReadFile(a.config.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", a.config.File, err)
	}
	if err := upload.Validate(data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUploadFailed, a.config.File, err)
	}

	email := a.config.Email
	if email == "" {
		email, err = getSimpleText(a.reader, "Enter email", a.out)
		if err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.Login(ctx, email, password); err != nil {
		return err
	}

	link, err := a.Upload(ctx, filepath.Base(a.config.File), data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.out, link)
	return err
}

func (a *App) endpoint(path ...string) (string, error) {
	return url.JoinPath(a.config.ServerURL, path...)
}
