package quill

import (
	"github.com/itsatony/go-quill/internal"
)

// CoreExtensionName is the name the core extension reports in logs
const CoreExtensionName = "core"

// CoreExtension contributes the built-in tags, filters, functions and passes.
// Every engine registers it before any other extension, so its passes run
// first and other extensions can override its entries.
type CoreExtension struct {
	BaseExtension
}

// NewCoreExtension creates the core extension
func NewCoreExtension() *CoreExtension {
	return &CoreExtension{}
}

// Name returns the extension name
func (e *CoreExtension) Name() string { return CoreExtensionName }

// Tags returns the core tag handlers
func (e *CoreExtension) Tags(*CompileState) *Table[TagHandler] {
	include := NewIncludeDisambiguator()
	return NewTable[TagHandler]().
		Set(TagNamePrint, SimpleTag(printTag)).
		Set(TagNameBlock, SimpleTag(blockTag)).
		Set(TagNameDefine, SimpleTag(defineTag)).
		Set(TagNameInclude, SimpleTag(include.Split(includeBlockTag, includeFileTag))).
		Set(TagNameSyntax, SuspendingTag(prepareSyntax)).
		Set(TagNameLeftBrace, SimpleTag(braceTag("{"))).
		Set(TagNameRightBrace, SimpleTag(braceTag("}"))).
		Set(TagNameVar, SimpleTag(varTag(false))).
		Set(TagNameDefault, SimpleTag(varTag(true))).
		Set(TagNameIf, SimpleTag(ifTag)).
		Set(TagNameForeach, SimpleTag(foreachTag)).
		Set(TagNameCapture, SimpleTag(captureTag)).
		Set(TagNameSpaceless, SimpleTag(spacelessTag)).
		Set(TagNameTemplatePrint, SimpleTag(templatePrintTag)).
		Set(TagNameDo, SimpleTag(doTag))
}

// Filters returns the core filters
func (e *CoreExtension) Filters(*CompileState) *Table[Callable] {
	return coreFilters()
}

// Functions returns the core functions
func (e *CoreExtension) Functions(*CompileState) *Table[Callable] {
	return coreFunctions()
}

// Passes returns the core passes bound to the compile state
func (e *CoreExtension) Passes(state *CompileState) *Table[PassFunc] {
	return NewTable[PassFunc]().
		Set(PassInternalVariables, internalVariablesPass(state.StrictParsing)).
		Set(PassOverwrittenVariables, overwrittenVariablesPass(state.Logger)).
		Set(PassCustomFunctions, customFunctionsPass(state.FunctionNames())).
		Set(PassMoveTemplatePrintToHead, InPlace(moveTemplatePrintToHead))
}

// printTag handles {= expr|filters} and the implicit forms {$x} and {(expr)}
func printTag(tag *Tag, _ *Parser) (Node, error) {
	if err := tag.ExpectArguments(); err != nil {
		return nil, err
	}
	expression, err := tag.Args.parseExpr([]string{punctPipe})
	if err != nil {
		return nil, err
	}
	filters, err := tag.Args.ParseFilters()
	if err != nil {
		return nil, err
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}
	return &PrintNode{Position: tag.Position, Expression: expression, Filters: filters}, nil
}

// blockTag handles {block [#]name|filters}...{/block}; the name is optional
func blockTag(tag *Tag, p *Parser) (Node, error) {
	node := &BlockNode{Position: tag.Position}
	if !tag.Args.IsEnd() && !tag.Args.Peek().Is(punctPipe) {
		tag.Args.TryConsume(SigilBlockRef)
		name, err := parseName(tag)
		if err != nil {
			return nil, err
		}
		node.Name = name
	}
	filters, err := tag.Args.ParseFilters()
	if err != nil {
		return nil, err
	}
	node.Filters = filters
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}

	if tag.Void {
		node.Body = &FragmentNode{Position: tag.Position}
		return node, nil
	}
	body, _, err := p.ParseTagBody(tag)
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

// defineTag handles {define name, $param, $param}...{/define}
func defineTag(tag *Tag, p *Parser) (Node, error) {
	if err := tag.ExpectArguments(); err != nil {
		return nil, err
	}
	if err := tag.ExpectNotVoid(); err != nil {
		return nil, err
	}
	tag.Args.TryConsume(SigilBlockRef)
	name, err := parseName(tag)
	if err != nil {
		return nil, err
	}
	node := &DefineNode{Position: tag.Position, Name: name}
	for {
		if _, ok := tag.Args.TryConsume(punctComma); !ok {
			break
		}
		param, err := tag.Args.ExpectVariable()
		if err != nil {
			return nil, err
		}
		node.Params = append(node.Params, param)
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}

	body, _, err := p.ParseTagBody(tag)
	if err != nil {
		return nil, err
	}
	node.Body = body
	return node, nil
}

// includeBlockTag handles {include [block] [#]name, args|filters}
func includeBlockTag(tag *Tag, _ *Parser) (Node, error) {
	tag.Args.TryConsumeBeforeUnquoted(KeywordBlock)
	tag.Args.TryConsume(SigilBlockRef)
	name, err := tag.Args.ParseUnquotedStringOrExpression()
	if err != nil {
		return nil, err
	}
	args, filters, err := parseIncludeTail(tag)
	if err != nil {
		return nil, err
	}
	return &IncludeBlockNode{Position: tag.Position, Name: name, Args: args, Filters: filters}, nil
}

// includeFileTag handles {include [file] path, args|filters}
func includeFileTag(tag *Tag, _ *Parser) (Node, error) {
	tag.Args.TryConsumeBeforeUnquoted(KeywordFile)
	file, err := tag.Args.ParseUnquotedStringOrExpression()
	if err != nil {
		return nil, err
	}
	args, filters, err := parseIncludeTail(tag)
	if err != nil {
		return nil, err
	}
	return &IncludeFileNode{Position: tag.Position, File: file, Args: args, Filters: filters}, nil
}

// parseIncludeTail parses the optional arguments and filters after an include target
func parseIncludeTail(tag *Tag) ([]*ArgNode, []*FilterNode, error) {
	var args []*ArgNode
	if _, ok := tag.Args.TryConsume(punctComma); ok {
		parsed, err := tag.Args.ParseArguments()
		if err != nil {
			return nil, nil, err
		}
		args = parsed
	}
	filters, err := tag.Args.ParseFilters()
	if err != nil {
		return nil, nil, err
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, nil, err
	}
	return args, filters, nil
}

// varTag handles {var $a = 1, $b = 2} and {default $a = 1}
func varTag(isDefault bool) TagFunc {
	return func(tag *Tag, _ *Parser) (Node, error) {
		if err := tag.ExpectArguments(); err != nil {
			return nil, err
		}
		node := &VarNode{Position: tag.Position, Default: isDefault}
		for {
			pos := tag.Args.Peek().Position
			name, err := tag.Args.ExpectVariable()
			if err != nil {
				return nil, err
			}
			if _, err := tag.Args.Expect(punctAssign); err != nil {
				return nil, err
			}
			value, err := tag.Args.parseExpr(nil)
			if err != nil {
				return nil, err
			}
			node.Assignments = append(node.Assignments, &Assignment{Position: pos, Variable: name, Value: value})
			if _, ok := tag.Args.TryConsume(punctComma); !ok {
				break
			}
		}
		if err := tag.ExpectEnd(); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// ifTag handles {if cond}...{elseif cond}...{else}...{/if}
func ifTag(tag *Tag, p *Parser) (Node, error) {
	node := &IfNode{Position: tag.Position}
	current := tag
	for {
		if err := current.ExpectArguments(); err != nil {
			return nil, err
		}
		condition, err := current.Args.parseExpr(nil)
		if err != nil {
			return nil, err
		}
		if err := current.ExpectEnd(); err != nil {
			return nil, err
		}

		intermediates := []string{TagNameElseIf, TagNameElse}
		if tag.Attribute {
			intermediates = nil
		}
		body, stop, err := p.ParseTagBody(tag, intermediates...)
		if err != nil {
			return nil, err
		}
		node.Branches = append(node.Branches, &IfBranch{Position: current.Position, Condition: condition, Body: body})

		if stop == nil {
			return node, nil
		}
		switch stop.Name {
		case TagNameElseIf:
			current = stop
		case TagNameElse:
			if err := stop.ExpectNoArguments(); err != nil {
				return nil, err
			}
			elseBody, _, err := p.ParseFragment(TagNameIf)
			if err != nil {
				return nil, err
			}
			node.Else = elseBody
			return node, nil
		default:
			return node, nil
		}
	}
}

// foreachTag handles {foreach $items as [$key =>] $value}...{else}...{/foreach}
func foreachTag(tag *Tag, p *Parser) (Node, error) {
	if err := tag.ExpectArguments(); err != nil {
		return nil, err
	}
	subject, err := tag.Args.parseExpr([]string{KeywordAs})
	if err != nil {
		return nil, err
	}
	if _, err := tag.Args.Expect(KeywordAs); err != nil {
		return nil, err
	}
	node := &ForeachNode{Position: tag.Position, Subject: subject}
	first, err := tag.Args.ExpectVariable()
	if err != nil {
		return nil, err
	}
	node.Value = first
	if _, ok := tag.Args.TryConsume(punctArrow); ok {
		value, err := tag.Args.ExpectVariable()
		if err != nil {
			return nil, err
		}
		node.Key, node.Value = first, value
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}

	var intermediates []string
	if !tag.Attribute {
		intermediates = []string{TagNameElse}
	}
	body, stop, err := p.ParseTagBody(tag, intermediates...)
	if err != nil {
		return nil, err
	}
	node.Body = body
	if stop != nil && stop.Name == TagNameElse {
		if err := stop.ExpectNoArguments(); err != nil {
			return nil, err
		}
		elseBody, _, err := p.ParseFragment(TagNameForeach)
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	return node, nil
}

// captureTag handles {capture $var|filters}...{/capture}
func captureTag(tag *Tag, p *Parser) (Node, error) {
	if err := tag.ExpectArguments(); err != nil {
		return nil, err
	}
	if err := tag.ExpectNotVoid(); err != nil {
		return nil, err
	}
	variable, err := tag.Args.ExpectVariable()
	if err != nil {
		return nil, err
	}
	filters, err := tag.Args.ParseFilters()
	if err != nil {
		return nil, err
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}
	body, _, err := p.ParseTagBody(tag)
	if err != nil {
		return nil, err
	}
	return &CaptureNode{Position: tag.Position, Variable: variable, Filters: filters, Body: body}, nil
}

// spacelessTag handles {spaceless}...{/spaceless}
func spacelessTag(tag *Tag, p *Parser) (Node, error) {
	if err := tag.ExpectNoArguments(); err != nil {
		return nil, err
	}
	if tag.Void {
		return &SpacelessNode{Position: tag.Position, Body: &FragmentNode{Position: tag.Position}}, nil
	}
	body, _, err := p.ParseTagBody(tag)
	if err != nil {
		return nil, err
	}
	return &SpacelessNode{Position: tag.Position, Body: body}, nil
}

// templatePrintTag handles {templatePrint [TypeName]}
func templatePrintTag(tag *Tag, _ *Parser) (Node, error) {
	node := &TemplatePrintNode{Position: tag.Position}
	if !tag.Args.IsEnd() {
		name, err := parseName(tag)
		if err != nil {
			return nil, err
		}
		node.TypeName = name
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}
	return node, nil
}

// doTag handles {do expr}
func doTag(tag *Tag, _ *Parser) (Node, error) {
	if err := tag.ExpectArguments(); err != nil {
		return nil, err
	}
	expression, err := tag.Args.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := tag.ExpectEnd(); err != nil {
		return nil, err
	}
	return &DoNode{Position: tag.Position, Expression: expression}, nil
}

// parseName parses a static name: an unquoted word or a quoted string
func parseName(tag *Tag) (string, error) {
	tok := tag.Args.Peek()
	if tok.Type == internal.ArgTokenString {
		tag.Args.Consume()
		return tok.Value, nil
	}
	value, err := tag.Args.ParseUnquotedStringOrExpression()
	if err != nil {
		return "", err
	}
	str, ok := value.(*StringNode)
	if !ok {
		return "", NewTagError(ErrMsgExpectedName, tag.Name, tok.Position)
	}
	return str.Value, nil
}
