package inputprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"inkwell/internal/util"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

// DefaultMaxBytes caps how much of a file, URL or stdin body is read.
const DefaultMaxBytes = 2 << 20

// ErrInputTooLarge is returned when a source exceeds the configured limit.
var ErrInputTooLarge = errors.New("input exceeds size limit")

// Input types recorded in Result.InputType.
const (
	InputFile  = "file"
	InputURL   = "url"
	InputStdin = "stdin"
	InputRaw   = "raw"
)

// Result holds the text read from one input.
type Result struct {
	Body        string
	ContentType string
	InputType   string
	FilePath    *string    // absolute path for file inputs
	URL         *string    // final URL for url inputs
	Mtime       *time.Time // file modification time
}

// Processor turns a CLI argument into markup to analyze.
type Processor interface {
	Process(ctx context.Context, input string) (Result, error)
}

// Options configures New. Zero values select defaults.
type Options struct {
	MaxBytes   int64
	HTTPClient *http.Client
	Stdin      io.Reader
}

type defaultProcessor struct {
	maxBytes int64
	client   *http.Client
	stdin    io.Reader
}

var _ Processor = (*defaultProcessor)(nil)

// New creates the default processor. Inputs are tried as "-" (stdin), an
// existing file, an http(s) URL, and finally literal text.
func New(opts Options) Processor {
	p := &defaultProcessor{maxBytes: opts.MaxBytes, client: opts.HTTPClient, stdin: opts.Stdin}
	if p.maxBytes <= 0 {
		p.maxBytes = DefaultMaxBytes
	}
	if p.client == nil {
		p.client = &http.Client{Timeout: 30 * time.Second}
	}
	if p.stdin == nil {
		p.stdin = os.Stdin
	}
	return p
}

func (p *defaultProcessor) Process(ctx context.Context, input string) (Result, error) {
	if input == "-" {
		data, err := p.readLimited(p.stdin, "stdin")
		if err != nil {
			return Result{}, err
		}
		return p.finish(Result{InputType: InputStdin, ContentType: http.DetectContentType(data)}, data, "stdin")
	}

	fi, err := os.Stat(input)
	switch {
	case err == nil && !fi.IsDir():
		return p.processFile(input, fi)
	case err == nil:
		return Result{}, fmt.Errorf("input '%s' is a directory, not a file", input)
	case !errors.Is(err, os.ErrNotExist) && !errors.Is(err, os.ErrInvalid):
		log.WithField("input", input).Debugf("stat failed, trying other input types: %v", err)
	}

	if parsed, urlErr := url.Parse(input); urlErr == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != "" {
		return p.processURL(ctx, parsed)
	}

	log.WithField("length", len(input)).Debug("input is not a file or URL, treating as raw text")
	return p.finish(Result{InputType: InputRaw, ContentType: "text/plain; charset=utf-8"}, []byte(input), "argument")
}

func (p *defaultProcessor) processFile(path string, fi os.FileInfo) (Result, error) {
	if fi.Size() > p.maxBytes {
		return Result{}, fmt.Errorf("file '%s' is %d bytes: %w (%d)", path, fi.Size(), ErrInputTooLarge, p.maxBytes)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Result{}, fmt.Errorf("permission denied reading file '%s': %w", path, err)
		}
		return Result{}, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer f.Close()

	data, err := p.readLimited(f, path)
	if err != nil {
		return Result{}, err
	}

	absPath, pathErr := filepath.Abs(path)
	if pathErr != nil {
		log.Warnf("Failed to get absolute path for '%s': %v. Using original path.", path, pathErr)
		absPath = path
	}
	mtime := fi.ModTime()
	log.WithField("path", absPath).Debug("input detected as a file")
	return p.finish(Result{
		InputType:   InputFile,
		ContentType: http.DetectContentType(data),
		FilePath:    &absPath,
		Mtime:       &mtime,
	}, data, absPath)
}

func (p *defaultProcessor) processURL(ctx context.Context, u *url.URL) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request for URL '%s': %w", u, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch URL '%s': %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		hint, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("failed to fetch URL '%s': status code %d %s - Body Hint: %s",
			u, resp.StatusCode, http.StatusText(resp.StatusCode), string(hint))
	}

	ct := resp.Header.Get("Content-Type")
	// Decode declared or sniffed charsets to UTF-8.
	body, err := charset.NewReader(resp.Body, ct)
	if err != nil {
		log.WithField("url", u.String()).Warnf("unknown charset, reading raw bytes: %v", err)
		body = resp.Body
	}
	data, err := p.readLimited(body, u.String())
	if err != nil {
		return Result{}, err
	}
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	final := resp.Request.URL.String()
	log.WithField("url", final).Debug("input detected as a URL")
	return p.finish(Result{InputType: InputURL, ContentType: ct, URL: &final}, data, final)
}

// readLimited reads at most maxBytes, failing when r holds more.
func (p *defaultProcessor) readLimited(r io.Reader, src string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}
	if int64(len(data)) > p.maxBytes {
		return nil, fmt.Errorf("%s: %w (%d bytes)", src, ErrInputTooLarge, p.maxBytes)
	}
	return data, nil
}

func (p *defaultProcessor) finish(res Result, data []byte, src string) (Result, error) {
	body, err := util.CleanInput(data, src)
	if err != nil {
		return Result{}, err
	}
	res.Body = body
	return res, nil
}
