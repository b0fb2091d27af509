package parser

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/ardanlabs/rtwbind/logutil"
)

var structOpenRe = regexp.MustCompile(`^\s*typedef\s+struct\b`)
var fieldRe = regexp.MustCompile(`^\s*(\w+_T|double|float)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
var modelNameRe = regexp.MustCompile(`File:\s*(\w+)\.h`)

type Option func(*parser)

// WithStrict makes unrecognized struct body lines and malformed sections fatal.
func WithStrict(strict bool) Option {
	return func(p *parser) {
		p.strict = strict
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *parser) {
		if logger != nil {
			p.log = logger
		}
	}
}

type parser struct {
	strict bool
	log    *slog.Logger
	lines  []string
	pos    int
}

// Parse extracts the external inputs, external outputs and block states of
// a generated model header. Sections that are absent yield empty lists.
func Parse(content string, opts ...Option) (*Header, error) {
	p := &parser{
		log: slog.New(slog.DiscardHandler),
		pos: -1,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.lines = strings.Split(normalizeNewlines(content), "\n")

	header := &Header{
		Model: ModelName(content),
	}

	for p.next() {
		line := p.line()
		for _, s := range sections {
			if !strings.Contains(line, s.Marker()) {
				continue
			}
			if err := p.parseSection(header, s); err != nil {
				return nil, err
			}
			break
		}
	}

	return header, nil
}

// ModelName returns the model identifier announced by the "File: <name>.h"
// banner, or "" when the header has none.
func ModelName(content string) string {
	m := modelNameRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	return s
}

func (p *parser) next() bool {
	if p.pos+1 >= len(p.lines) {
		return false
	}
	p.pos++
	return true
}

func (p *parser) line() string {
	return p.lines[p.pos]
}

func (p *parser) lineNo() int {
	return p.pos + 1
}

func (p *parser) parseSection(header *Header, s Section) error {
	markerLine := p.lineNo()

	advanced := p.next()
	if !advanced || !structOpenRe.MatchString(p.line()) {
		lerr := &LineError{Section: s, Line: markerLine + 1, Err: ErrMissingStructOpening}
		if advanced {
			lerr.Text = strings.TrimSpace(p.line())
		}
		if p.strict {
			return lerr
		}
		p.log.Warn("skipping section", "section", s, "line", lerr.Line, "reason", ErrMissingStructOpening)
		header.Skipped = append(header.Skipped, s)
		return nil
	}

	p.log.Debug("parsing section", "section", s, "tag", s.Tag(), "line", markerLine)

	fields := []Field{}
	for {
		if !p.next() {
			if p.strict {
				return &LineError{Section: s, Line: p.lineNo(), Err: ErrUnterminatedSection}
			}
			p.log.Warn("section reached end of input", "section", s, "tag", s.Tag())
			break
		}

		line := p.line()
		if strings.Contains(line, s.Tag()) {
			break
		}

		f, err := p.parseField(line)
		if err != nil {
			if p.strict {
				return &LineError{Section: s, Line: p.lineNo(), Text: strings.TrimSpace(line), Err: err}
			}
			continue
		}
		if f == nil {
			continue
		}

		p.log.Log(context.Background(), logutil.LevelTrace, "field",
			"section", s, "name", f.Name, "type", f.CType, "size", f.Len())
		fields = append(fields, *f)
	}

	if prev := header.Fields(s); len(prev) > 0 {
		p.log.Debug("section redeclared, keeping last", "section", s, "previous", len(prev))
	}
	header.set(s, fields)

	return nil
}

// parseField returns nil, nil for lines that carry no declaration.
func (p *parser) parseField(line string) (*Field, error) {
	m := fieldRe.FindStringSubmatch(line)
	if m == nil {
		if isFiller(line) {
			return nil, nil
		}
		return nil, ErrFieldSyntax
	}

	f := Field{
		Name:  m[2],
		CType: m[1],
		Line:  p.lineNo(),
	}

	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil || n <= 0 {
			return nil, ErrFieldSyntax
		}
		f.Size = n
	}

	return &f, nil
}

func isFiller(line string) bool {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true
	case strings.HasPrefix(line, "/*"), strings.HasPrefix(line, "*"), strings.HasPrefix(line, "//"):
		return true
	}
	return false
}
