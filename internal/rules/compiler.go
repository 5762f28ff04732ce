package rules

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"schedule-transformer/internal/diagnostic"
	"schedule-transformer/internal/property"
	"schedule-transformer/internal/schema"
	"schedule-transformer/internal/suggest"
	"schedule-transformer/internal/transform"
	"schedule-transformer/pkg/logger"
)

const maxLineSize = 1 << 20

var ruleOps = []string{"add", "update", "change", "modify", "remove", "delete", "retain", "transform"}

// Compiler turns rule text into pipelines. Entity types and field aliases
// come from the schema registry, "factory" and "transform" names from ops.
type Compiler struct {
	schemas *schema.Registry
	ops     *Ops
	resolve property.Resolver
	diags   diagnostic.Diagnostics
}

// NewCompiler creates a compiler. A nil ops accepts no named ops.
func NewCompiler(schemas *schema.Registry, ops *Ops) *Compiler {
	if ops == nil {
		ops = NewOps()
	}

	return &Compiler{
		schemas: schemas,
		ops:     ops,
		resolve: schemas.Resolver(),
	}
}

// Diagnostics returns the warnings reported by every compile so far.
func (c *Compiler) Diagnostics() diagnostic.Diagnostics { return c.diags }

// CompileString compiles rule text held in a string.
func (c *Compiler) CompileString(ctx context.Context, text string) (*transform.Pipeline, error) {
	return c.Compile(ctx, strings.NewReader(text))
}

// CompileFile compiles a rule file. Files ending in ".gz" are decompressed.
func (c *Compiler) CompileFile(ctx context.Context, path string) (*transform.Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f

	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
		}
		defer zr.Close()

		r = zr
	}

	p, err := c.Compile(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// Compile reads rules from r, one per line, and returns the pipeline they
// describe.
func (c *Compiler) Compile(ctx context.Context, r io.Reader) (*transform.Pipeline, error) {
	log := logger.FromContext(ctx).WithComponent("rules")
	p := transform.NewPipeline()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++

		text := strings.TrimSpace(sc.Text())
		if skipLine(text) {
			continue
		}

		if err := c.compileRule(ctx, p, line, text); err != nil {
			return nil, err
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	log.Debugw("rules compiled", "lines", line, "stages", p.Len())

	return p, nil
}

func skipLine(text string) bool {
	return text == "" || strings.HasPrefix(text, "#") || text == "{{{" || text == "}}}"
}

// rule is one parsed line.
type rule struct {
	line int
	text string
	obj  *yaml.Node
}

func (r *rule) syntaxErr(err error) error {
	return &SyntaxError{Line: r.line, Text: r.text, Err: err}
}

// runtimeErr reports name, suggesting the closest of known.
func (r *rule) runtimeErr(name string, err error, known ...string) error {
	re := &RuntimeError{Line: r.line, Text: r.text, Name: name, Err: err}
	re.Suggestion, _ = suggest.Closest(name, known)

	return re
}

func (c *Compiler) compileRule(ctx context.Context, p *transform.Pipeline, line int, text string) error {
	r := &rule{line: line, text: text}

	obj, err := parseRule(text)
	if err != nil {
		return r.syntaxErr(err)
	}

	r.obj = obj

	op, ok, err := scalarMember(r.obj, "op")
	if err != nil {
		return r.syntaxErr(err)
	}

	if !ok {
		return r.syntaxErr(ErrMissingOp)
	}

	switch op {
	case "add":
		return c.compileAdd(p, r)
	case "update", "change", "modify":
		return c.compileUpdate(p, r)
	case "remove", "delete":
		return c.compileRemove(p, r)
	case "retain":
		return c.compileRetain(p, r)
	case "transform":
		return c.compileTransform(p, r)
	default:
		msg := fmt.Sprintf("unknown op %q skipped", op)
		if s, ok := suggest.Closest(op, ruleOps); ok {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}

		logger.FromContext(ctx).WithComponent("rules").Warnw("skipping rule with unknown op", "op", op, "line", line)
		c.diags.AddWarning(diagnostic.CodeUnknownOp, msg, "", line, "")

		return nil
	}
}

func (c *Compiler) compileAdd(p *transform.Pipeline, r *rule) error {
	obj, ok := member(r.obj, "obj")
	if !ok || obj.Kind != yaml.MappingNode {
		return r.syntaxErr(errors.New(`add needs an "obj" object`))
	}

	t, err := c.entityType(r, obj)
	if err != nil {
		return err
	}

	e := t.New()

	var refs []transform.Assignment

	for key, n := range members(obj) {
		if key == "class" {
			continue
		}

		a, err := c.assignment(t, key, n)
		if err != nil {
			return r.syntaxErr(err)
		}

		if a.Ref != nil {
			refs = append(refs, a)

			continue
		}

		if err := a.Path.Set(e, a.Value); err != nil {
			return r.syntaxErr(err)
		}
	}

	lastOrNew[transform.AddStage](p).Add(t, e, refs...)

	return nil
}

func (c *Compiler) compileUpdate(p *transform.Pipeline, r *rule) error {
	m, err := c.match(r)
	if err != nil {
		return err
	}

	var modes []string

	for _, key := range []string{"update", "strings", "factory"} {
		if _, ok := member(r.obj, key); ok {
			modes = append(modes, key)
		}
	}

	if len(modes) != 1 {
		return r.syntaxErr(fmt.Errorf(`update needs exactly one of "update", "strings" or "factory", got %d`, len(modes)))
	}

	var strategy transform.EntityStrategy

	switch modes[0] {
	case "update":
		strategy, err = c.setProperties(r, m.Type)
	case "strings":
		strategy, err = c.replaceStrings(r, m.Type)
	case "factory":
		strategy, err = c.factory(r)
	}

	if err != nil {
		return err
	}

	lastOrNew[transform.ModifyStage](p).Add(m, strategy)

	return nil
}

func (c *Compiler) setProperties(r *rule, t *property.Type) (*transform.SetProperties, error) {
	n, _ := member(r.obj, "update")
	if n.Kind != yaml.MappingNode {
		return nil, r.syntaxErr(errors.New(`"update" must be an object`))
	}

	s := &transform.SetProperties{}

	for key, v := range members(n) {
		a, err := c.assignment(t, key, v)
		if err != nil {
			return nil, r.syntaxErr(err)
		}

		s.Assignments = append(s.Assignments, a)
	}

	return s, nil
}

func (c *Compiler) replaceStrings(r *rule, t *property.Type) (*transform.ReplaceStrings, error) {
	n, _ := member(r.obj, "strings")
	if n.Kind != yaml.MappingNode {
		return nil, r.syntaxErr(errors.New(`"strings" must be an object`))
	}

	s := &transform.ReplaceStrings{}

	for key, pair := range members(n) {
		path, err := c.path(t, key)
		if err != nil {
			return nil, r.syntaxErr(err)
		}

		if pair.Kind != yaml.MappingNode || len(pair.Content) != 2 {
			return nil, r.syntaxErr(fmt.Errorf(`strings %s: want one {"pattern": "replacement"} pair`, key))
		}

		from, to := pair.Content[0], pair.Content[1]
		if to.Kind != yaml.ScalarNode {
			return nil, r.syntaxErr(fmt.Errorf("strings %s: replacement must be a string", key))
		}

		repl, err := transform.NewReplacement(path, from.Value, to.Value)
		if err != nil {
			return nil, r.syntaxErr(err)
		}

		s.Replacements = append(s.Replacements, repl)
	}

	return s, nil
}

func (c *Compiler) factory(r *rule) (transform.EntityStrategy, error) {
	name, _, err := scalarMember(r.obj, "factory")
	if err != nil {
		return nil, r.syntaxErr(err)
	}

	inst, ok := c.ops.New(name)
	if !ok {
		return nil, r.runtimeErr(name, ErrUnknownOp, c.ops.Names()...)
	}

	strategy, ok := inst.(transform.EntityStrategy)
	if !ok {
		return nil, r.runtimeErr(name, fmt.Errorf("%w: %T is not an entity strategy", ErrWrongKind, inst))
	}

	return strategy, nil
}

func (c *Compiler) compileRemove(p *transform.Pipeline, r *rule) error {
	m, err := c.match(r)
	if err != nil {
		return err
	}

	lastOrNew[transform.RemoveStage](p).Add(m)

	return nil
}

func (c *Compiler) compileRetain(p *transform.Pipeline, r *rule) error {
	m, err := c.match(r)
	if err != nil {
		return err
	}

	retainUp := true

	if n, ok := member(r.obj, "retainUp"); ok {
		if err := n.Decode(&retainUp); err != nil {
			return r.syntaxErr(fmt.Errorf("retainUp: %w", err))
		}
	}

	lastOrNew[transform.RetainStage](p).Add(m, retainUp)

	return nil
}

func (c *Compiler) compileTransform(p *transform.Pipeline, r *rule) error {
	name, ok, err := scalarMember(r.obj, "class")
	if err != nil {
		return r.syntaxErr(err)
	}

	if !ok {
		return r.syntaxErr(errors.New(`transform needs a "class"`))
	}

	inst, ok := c.ops.New(name)
	if !ok {
		return r.runtimeErr(name, ErrUnknownOp, c.ops.Names()...)
	}

	extra := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	for key, n := range members(r.obj) {
		if key == "op" || key == "class" {
			continue
		}

		extra.Content = append(extra.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, n)
	}

	if len(extra.Content) > 0 {
		if err := extra.Decode(inst); err != nil {
			return r.runtimeErr(name, fmt.Errorf("set fields: %w", err))
		}
	}

	switch op := inst.(type) {
	case transform.Stage:
		p.Add(op)
	case transform.StageFactory:
		if err := op.CreateStages(p); err != nil {
			return r.runtimeErr(name, err)
		}
	default:
		return r.runtimeErr(name, fmt.Errorf("%w: %T is neither a stage nor a stage factory", ErrWrongKind, inst))
	}

	return nil
}

// match reads the "match" member of r.
func (c *Compiler) match(r *rule) (*transform.Match, error) {
	n, ok := member(r.obj, "match")
	if !ok || n.Kind != yaml.MappingNode {
		return nil, r.syntaxErr(errors.New(`rule needs a "match" object`))
	}

	t, err := c.entityType(r, n)
	if err != nil {
		return nil, err
	}

	m := transform.NewMatch(t)

	for key, v := range members(n) {
		switch key {
		case "class":
			continue
		case "where":
			if v.Kind != yaml.ScalarNode {
				return nil, r.syntaxErr(errors.New(`"where" must be a string`))
			}

			w, err := transform.CompileWhere(v.Value)
			if err != nil {
				return nil, r.syntaxErr(err)
			}

			m.Where = w
		default:
			a, err := c.assignment(t, key, v)
			if err != nil {
				return nil, r.syntaxErr(err)
			}

			m.With(c.schemas.Types(), a.Path, a.Value)
		}
	}

	return m, nil
}

// entityType resolves the "class" member of obj.
func (c *Compiler) entityType(r *rule, obj *yaml.Node) (*property.Type, error) {
	name, ok, err := scalarMember(obj, "class")
	if err != nil {
		return nil, r.syntaxErr(err)
	}

	if !ok {
		return nil, r.syntaxErr(errors.New(`missing "class"`))
	}

	t, ok := c.schemas.Types().Lookup(name)
	if !ok {
		var names []string
		for _, t := range c.schemas.Types().All() {
			names = append(names, t.Name())
		}

		return nil, r.runtimeErr(name, ErrUnknownClass, names...)
	}

	return t, nil
}

func (c *Compiler) path(t *property.Type, key string) (*property.Path, error) {
	p, err := property.ParsePath(c.schemas.Types(), t, key, c.resolve)

	var pe *property.PathError
	if errors.As(err, &pe) && errors.Is(err, property.ErrUnknownProperty) {
		if s, ok := suggest.Closest(pe.Segment, c.fieldNames(pe.Type)); ok {
			return nil, fmt.Errorf("%w (did you mean %q?)", err, s)
		}
	}

	return p, err
}

// fieldNames lists the property and external field names of a type.
func (c *Compiler) fieldNames(typeName string) []string {
	t, ok := c.schemas.Types().Lookup(typeName)
	if !ok {
		return nil
	}

	var names []string
	for _, p := range t.Properties() {
		names = append(names, p.Name())
	}

	if s, err := c.schemas.Schema(t); err == nil {
		for _, f := range s.Fields() {
			names = append(names, f.External)
		}
	}

	return names
}

// assignment resolves key against t and converts n to the type it addresses.
func (c *Compiler) assignment(t *property.Type, key string, n *yaml.Node) (transform.Assignment, error) {
	path, err := c.path(t, key)
	if err != nil {
		return transform.Assignment{}, err
	}

	a := transform.Assignment{Path: path, Ref: path.Target()}

	a.Value, err = c.value(path, n)
	if err != nil {
		return transform.Assignment{}, err
	}

	return a, nil
}

func (c *Compiler) value(path *property.Path, n *yaml.Node) (any, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%s: value must be a scalar", path)
	}

	if n.ShortTag() == "!!null" {
		return nil, nil
	}

	convs := c.schemas.Codecs().Converters()

	if target := path.Target(); target != nil {
		if !target.HasKey() {
			return nil, fmt.Errorf("%s: %s has no key", path, target.Name())
		}

		key, err := convs.Convert(n.Value, target.KeyProperty().Type())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		return key, nil
	}

	if n.ShortTag() == "!!str" {
		if f, ok := c.field(path); ok {
			v, err := f.Codec.Decode(nil, n.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}

			return v, nil
		}
	}

	v, err := convs.Convert(n.Value, path.Type())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return v, nil
}

// field finds the schema field of the last path segment.
func (c *Compiler) field(path *property.Path) (*schema.FieldMapping, bool) {
	s, err := c.schemas.Schema(path.Owner())
	if err != nil {
		return nil, false
	}

	return s.FieldForProperty(path.Last().Name())
}

// lastOrNew returns the last stage of p when it is a *T, or appends a new one.
func lastOrNew[T any, S interface {
	*T
	transform.Stage
}](p *transform.Pipeline) S {
	if last, ok := p.Last().(S); ok {
		return last
	}

	s := S(new(T))
	p.Add(s)

	return s
}

func member(obj *yaml.Node, key string) (*yaml.Node, bool) {
	for k, v := range members(obj) {
		if k == key {
			return v, true
		}
	}

	return nil, false
}

func scalarMember(obj *yaml.Node, key string) (string, bool, error) {
	n, ok := member(obj, key)
	if !ok || n.ShortTag() == "!!null" {
		return "", false, nil
	}

	if n.Kind != yaml.ScalarNode {
		return "", false, fmt.Errorf("%q must be a string", key)
	}

	return n.Value, true, nil
}

// members yields the key/value pairs of a mapping node in source order.
func members(obj *yaml.Node) func(yield func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		for i := 0; i+1 < len(obj.Content); i += 2 {
			if !yield(obj.Content[i].Value, obj.Content[i+1]) {
				return
			}
		}
	}
}
