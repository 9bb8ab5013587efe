package text

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/sunduk/internal/game/command"
	"github.com/cory-johannsen/sunduk/internal/game/event"
	"github.com/cory-johannsen/sunduk/internal/game/session"
)

// Banner is written when a console starts.
const Banner = "Welcome to Sunduk. Type 'help' for commands."

// LineIO is a line-oriented player connection.
type LineIO interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

// StreamIO adapts a reader and writer, such as a local terminal, to LineIO.
type StreamIO struct {
	sc *bufio.Scanner
	w  io.Writer
}

// NewStreamIO creates a StreamIO.
func NewStreamIO(r io.Reader, w io.Writer) *StreamIO {
	return &StreamIO{sc: bufio.NewScanner(r), w: w}
}

// ReadLine returns the next line, or io.EOF at end of input.
func (s *StreamIO) ReadLine() (string, error) {
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

// WriteLine writes text and a newline.
func (s *StreamIO) WriteLine(text string) error {
	_, err := fmt.Fprintln(s.w, text)
	return err
}

// WritePrompt writes prompt without a newline.
func (s *StreamIO) WritePrompt(prompt string) error {
	_, err := io.WriteString(s.w, prompt)
	return err
}

// Console runs the command loop for one player and one Session.
// A Console is not safe for concurrent use.
type Console struct {
	rw     LineIO
	sess   *session.Session
	interp *command.Interpreter
	render Renderer
	logger *zap.Logger

	toasts []string
	ended  []event.RunSummary
}

// NewConsole creates a Console.
//
// Precondition: all arguments must be non-nil.
func NewConsole(rw LineIO, sess *session.Session, reg *command.Registry, p Palette, logger *zap.Logger) *Console {
	return &Console{
		rw:     rw,
		sess:   sess,
		interp: command.NewInterpreter(reg, sess, logger),
		render: NewRenderer(p),
		logger: logger,
	}
}

// Run reads and executes lines until quit, end of input, or ctx is done.
//
// Postcondition: Returns nil on quit or end of input; otherwise the read,
// write, or context error that stopped the loop.
func (c *Console) Run(ctx context.Context) error {
	unsubscribe := c.sess.Subscribe(event.Funcs{
		Toast:    func(msg string, _ time.Duration) { c.toasts = append(c.toasts, msg) },
		RunEnded: func(s event.RunSummary) { c.ended = append(c.ended, s) },
	})
	defer unsubscribe()

	if err := c.rw.WriteLine(Banner); err != nil {
		return err
	}
	if err := c.rw.WriteLine(c.render.Board(c.sess.Snapshot())); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.rw.WritePrompt(c.render.Prompt(c.sess.Snapshot())); err != nil {
			return err
		}
		line, err := c.rw.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		quit, err := c.Execute(line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one line and writes everything it produced. It reports
// whether the player asked to quit; the error is only ever a write error.
func (c *Console) Execute(line string) (bool, error) {
	res, cmdErr := c.interp.Execute(line)

	var out []string
	for _, msg := range c.toasts {
		out = append(out, c.render.Toast(msg))
	}
	c.toasts = c.toasts[:0]
	if cmdErr != nil {
		c.logger.Debug("console command rejected", zap.String("line", line), zap.Error(cmdErr))
		out = append(out, c.render.Error(cmdErr))
	}
	if res.Message != "" {
		out = append(out, res.Message)
	}
	for _, s := range c.ended {
		out = append(out, c.render.Summary(s))
	}
	c.ended = c.ended[:0]
	if res.Board {
		out = append(out, c.render.Board(c.sess.Snapshot()))
	}
	if res.Quit {
		out = append(out, "Farewell.")
	}

	for _, l := range out {
		if err := c.rw.WriteLine(l); err != nil {
			return false, err
		}
	}
	return res.Quit, nil
}
