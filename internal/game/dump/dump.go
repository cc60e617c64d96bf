// Package dump reads the JSON export written by the save parser.
//
// A dump is one JSON object with a "game" member holding the game data and a "save" member
// holding the save. Both are walked member by member so that progress can be reported while
// reading. Relative image paths are resolved against the directory of the dump.
package dump

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/osallek/osa-extractor/internal/game"
	"github.com/spf13/afero"
	"github.com/ubuntu/decorate"
)

// ErrInvalidDump is returned when the file is not a dump export.
var ErrInvalidDump = errors.New("invalid dump")

// Parser implements game.Parser over dump exports.
type Parser struct {
	fs  afero.Fs
	log *slog.Logger
}

type options struct {
	log *slog.Logger
}

// Options represents an optional function to override Parser default values.
type Options func(*options)

// WithLogger sets the logger of the parser.
func WithLogger(l *slog.Logger) Options {
	return func(o *options) {
		o.log = l
	}
}

// New returns a parser reading dumps from fsys.
func New(fsys afero.Fs, args ...Options) *Parser {
	opts := options{log: slog.Default()}
	for _, opt := range args {
		opt(&opts)
	}
	return &Parser{fs: fsys, log: opts.log}
}

// ParseGame reads the "game" member of the dump. unit is called once per member read.
func (p *Parser) ParseGame(ctx context.Context, savePath string, unit func(done, total int)) (g *game.Game, err error) {
	defer decorate.OnError(&err, "could not parse game data from %s", savePath)

	g = &game.Game{}
	fields := gameFields(g)
	var done int

	found, err := p.walkMember(ctx, savePath, "game", func(dec *json.Decoder, key string) error {
		target, ok := fields[key]
		if !ok {
			p.log.Debug("Skipping unknown game member", "member", key)
			return skip(dec)
		}
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("%w: member %q: %v", ErrInvalidDump, key, err)
		}
		done++
		if unit != nil {
			unit(done, len(fields))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no game data", ErrInvalidDump)
	}

	resolveGame(g, filepath.Dir(savePath))
	p.log.Debug("Game data parsed", "provinces", len(g.Provinces), "members", done)
	return g, nil
}

// LoadSave reads the "save" member of the dump. section is called with the name of every
// top level save section as reading reaches it.
func (p *Parser) LoadSave(ctx context.Context, savePath string, g *game.Game, section func(name string)) (s *game.Save, err error) {
	defer decorate.OnError(&err, "could not load save %s", savePath)

	s = &game.Save{Game: g}
	fields := saveFields(s)

	found, err := p.walkMember(ctx, savePath, "save", func(dec *json.Decoder, key string) error {
		if name, ok := sections[key]; ok && section != nil {
			section(name)
		}
		target, ok := fields[key]
		if !ok {
			p.log.Debug("Skipping unknown save member", "member", key)
			return skip(dec)
		}
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("%w: member %q: %v", ErrInvalidDump, key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no save data", ErrInvalidDump)
	}

	dir := filepath.Dir(savePath)
	for i := range s.Countries {
		resolve(dir, s.Countries[i].Flag)
		resolve(dir, s.Countries[i].CustomFlag)
	}
	return s, nil
}

// walkMember opens the dump and calls fn for every key of its top level member named member.
func (p *Parser) walkMember(ctx context.Context, path, member string, fn func(dec *json.Decoder, key string) error) (found bool, err error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	err = walkObject(ctx, dec, func(key string) error {
		if key != member {
			return skip(dec)
		}
		found = true
		return walkObject(ctx, dec, func(key string) error {
			return fn(dec, key)
		})
	})
	return found, err
}

// walkObject reads one JSON object from dec and calls fn with each key. fn must consume the value.
func walkObject(ctx context.Context, dec *json.Decoder, fn func(key string) error) error {
	t, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDump, err)
	}
	if d, ok := t.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected an object, got %v", ErrInvalidDump, t)
	}

	for dec.More() {
		if err := ctx.Err(); err != nil {
			return err
		}
		t, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDump, err)
		}
		key, ok := t.(string)
		if !ok {
			return fmt.Errorf("%w: expected a key, got %v", ErrInvalidDump, t)
		}
		if err := fn(key); err != nil {
			return err
		}
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDump, err)
	}
	return nil
}

func skip(dec *json.Decoder) error {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDump, err)
	}
	return nil
}
