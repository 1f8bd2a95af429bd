package quill

import (
	"slices"

	"github.com/itsatony/go-quill/internal"
	"go.uber.org/zap"
)

// LexerConfig holds the delimiter settings of one compile
type LexerConfig = internal.LexerConfig

// bodyMode controls where a body parse stops
type bodyMode uint8

const (
	bodyTopLevel  bodyMode = iota // ends at EOF; closing tags are errors
	bodyClosed                    // ends at the named closing tag or an intermediate tag
	bodyAttribute                 // ends at EOF or before any closing tag
)

// Parser drives the lexer for one compile and dispatches tags to handlers.
// It owns the lexer configuration, so separate parsers can run concurrently.
type Parser struct {
	config LexerConfig
	lexer  *internal.Lexer
	peeked *internal.Token
	tables *Tables
	state  *CompileState
	logger *zap.Logger
	depth  int // Active suspensions
}

// NewParser creates a parser for source using syntax as the initial lexer
// configuration and tables for dispatch
func NewParser(source string, syntax LexerConfig, tables *Tables, state *CompileState) *Parser {
	p := &Parser{
		config: syntax,
		tables: tables,
		state:  state,
		logger: state.Logger,
	}
	p.lexer = internal.NewLexer(source, &p.config, p.logger)
	return p
}

// Parse parses the whole template
func (p *Parser) Parse() (*TemplateNode, error) {
	if err := p.config.Validate(); err != nil {
		return nil, newLexerError(err)
	}
	start := Position{Line: 1, Column: 1}
	main, _, err := p.parseBody(bodyTopLevel, "", nil)
	if err != nil {
		return nil, err
	}
	return &TemplateNode{
		Position: start,
		Head:     &FragmentNode{Position: start},
		Main:     main,
	}, nil
}

// LexerConfig returns a copy of the current lexer configuration. Handlers
// change it only through a Suspension.
func (p *Parser) LexerConfig() LexerConfig {
	return p.config
}

// State returns the compile state
func (p *Parser) State() *CompileState {
	return p.state
}

// Tables returns the frozen tables of this compile
func (p *Parser) Tables() *Tables {
	return p.tables
}

// Depth returns the number of suspensions currently active
func (p *Parser) Depth() int {
	return p.depth
}

// ParseFragment parses nodes until the closing tag named endTag (or the
// anonymous {/}) or one of intermediates, and returns the tag that stopped it.
// Block handlers use it to parse their bodies, e.g. an if handler passes
// "elseif" and "else" as intermediates.
func (p *Parser) ParseFragment(endTag string, intermediates ...string) (*FragmentNode, *Tag, error) {
	body, stop, err := p.parseBody(bodyClosed, endTag, intermediates)
	if err != nil {
		return nil, nil, err
	}
	tag, err := newTag(*stop)
	if err != nil {
		return nil, nil, err
	}
	return body, tag, nil
}

// ParseTagBody parses the body of a simple block tag. In block form it parses
// up to the tag's closing tag or one of intermediates; in attribute form the
// body is the rest of the enclosing fragment and the returned tag is nil.
func (p *Parser) ParseTagBody(tag *Tag, intermediates ...string) (*FragmentNode, *Tag, error) {
	if !tag.Attribute {
		return p.ParseFragment(tag.Name, intermediates...)
	}
	body, stop, err := p.parseBody(bodyAttribute, "", nil)
	if err != nil {
		return nil, nil, err
	}
	if stop != nil {
		p.peeked = stop
	}
	return body, nil, nil
}

// DispatchTag looks the tag up in the tag table and runs its handler
func (p *Parser) DispatchTag(tag *Tag) (Node, error) {
	handler, ok := p.tables.Tags.Get(tag.Name)
	if !ok {
		return nil, NewUnknownTagError(tag.Name, tag.Position)
	}
	p.logger.Debug(LogMsgTagDispatched,
		zap.String(LogFieldTag, tag.Name),
		zap.Stringer(LogFieldPosition, tag.Position),
	)
	if handler.Suspends() {
		return p.suspend(tag, handler.prepare)
	}
	return handler.simple(tag, p)
}

// suspend runs the prepare/finish protocol. The configuration snapshot is
// restored exactly once on every path out of the body parse, before the
// error or the continuation is handled.
func (p *Parser) suspend(tag *Tag, prepare PrepareFunc) (Node, error) {
	s, err := prepare(tag, p)
	if err != nil {
		return nil, err
	}
	if s == nil || s.Finish == nil {
		return nil, NewTagError(ErrMsgNilSuspension, tag.Name, tag.Position)
	}
	if tag.Void {
		return s.Finish(&FragmentNode{Position: tag.Position})
	}

	p.dropLookahead()
	saved := p.config
	restored := false
	restore := func() {
		if restored {
			return
		}
		restored = true
		p.config = saved
		p.dropLookahead()
		p.depth--
		p.logger.Debug(LogMsgRestored,
			zap.String(LogFieldTag, tag.Name),
			zap.String(LogFieldOpen, saved.OpenDelim),
			zap.String(LogFieldClose, saved.CloseDelim),
		)
	}
	p.depth++
	defer restore()

	if s.Mutate != nil {
		if err := s.Mutate(&p.config); err != nil {
			return nil, NewCompileError(ErrMsgMutationFailed, err)
		}
		if err := p.config.Validate(); err != nil {
			return nil, newLexerError(err)
		}
	}
	p.logger.Debug(LogMsgSuspended,
		zap.String(LogFieldTag, tag.Name),
		zap.String(LogFieldOpen, p.config.OpenDelim),
		zap.String(LogFieldClose, p.config.CloseDelim),
		zap.Bool(LogFieldOff, p.config.Off),
	)

	mode, end := bodyClosed, s.EndTag
	if tag.Attribute {
		mode, end = bodyAttribute, ""
	} else if end == "" {
		end = tag.Name
	}

	body, stop, err := p.parseBody(mode, end, nil)
	if err != nil {
		return nil, err
	}
	restore()

	// The closing tag that ended an attribute body belongs to the enclosing
	// fragment and was lexed under the mutated syntax; hand it back unchanged.
	if mode == bodyAttribute && stop != nil {
		p.peeked = stop
	}
	return s.Finish(body)
}

// parseBody parses nodes until the stop condition of mode and returns the
// token that stopped it, if any
func (p *Parser) parseBody(mode bodyMode, end string, intermediates []string) (*FragmentNode, *internal.Token, error) {
	body := &FragmentNode{Position: p.lexer.Position()}
	if p.peeked != nil {
		body.Position = p.peeked.Position
	}

	for {
		tok, err := p.next()
		if err != nil {
			return nil, nil, err
		}

		switch tok.Type {
		case internal.TokenTypeEOF:
			if mode == bodyClosed {
				return nil, nil, NewTagError(ErrMsgUnclosedTag, end, tok.Position)
			}
			return body, nil, nil

		case internal.TokenTypeText:
			body.Append(&TextNode{Position: tok.Position, Content: tok.Value})

		case internal.TokenTypeTag:
			if tok.Closing {
				switch {
				case mode == bodyAttribute:
					return body, &tok, nil
				case mode == bodyTopLevel:
					return nil, nil, NewTagError(ErrMsgUnexpectedClosing, tok.Name, tok.Position)
				case tok.Name != "" && tok.Name != end:
					return nil, nil, NewMismatchedTagError(end, tok.Name, tok.Position)
				}
				return body, &tok, nil
			}

			if mode == bodyClosed && slices.Contains(intermediates, tok.Name) {
				return body, &tok, nil
			}

			tag, err := newTag(tok)
			if err != nil {
				return nil, nil, err
			}
			node, err := p.DispatchTag(tag)
			if err != nil {
				return nil, nil, err
			}
			if node != nil {
				body.Append(node)
			}
		}
	}
}

// next returns the pending lookahead token or lexes a new one
func (p *Parser) next() (internal.Token, error) {
	if p.peeked != nil {
		tok := *p.peeked
		p.peeked = nil
		return tok, nil
	}
	tok, err := p.lexer.Next()
	if err != nil {
		return tok, newLexerError(err)
	}
	return tok, nil
}

// dropLookahead rewinds the lexer over a pending token so it is lexed again
// under the current configuration
func (p *Parser) dropLookahead() {
	if p.peeked == nil {
		return
	}
	p.lexer.Seek(p.peeked.Position)
	p.peeked = nil
}
