package contentstream

import (
	"errors"
	"fmt"
	"sort"
)

// Errors reported by operator handlers and the Processor.
var (
	// ErrUnsupportedOperator is returned in strict mode for an operation
	// that has no registered handler.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrMissingOperand signals too few or mistyped operands.
	ErrMissingOperand = errors.New("missing operand")

	// ErrMissingResource signals a named resource absent from the page.
	ErrMissingResource = errors.New("missing resource")

	// ErrEmptyStack signals Q without a matching q.
	ErrEmptyStack = errors.New("graphics state stack is empty")

	// ErrInvalidOperator is returned by AddOperator for an empty name.
	ErrInvalidOperator = errors.New("invalid operator name")

	// ErrNilHandler is returned by AddOperator for a nil handler.
	ErrNilHandler = errors.New("nil operator handler")
)

// OperatorFunc handles one content stream operation.
type OperatorFunc func(op Operation) error

// Processor dispatches parsed operations to registered operator handlers.
//
// Handler errors wrapping ErrMissingOperand, ErrMissingResource or
// ErrEmptyStack are recoverable: they are recorded as warnings and the
// remaining operations still run. Any other handler error stops Process.
type Processor struct {
	handlers    map[string]OperatorFunc
	strict      bool
	unsupported map[string]int
	warnings    []string
}

// NewProcessor returns a Processor with no registered operators.
func NewProcessor() *Processor {
	return &Processor{
		handlers:    make(map[string]OperatorFunc),
		unsupported: make(map[string]int),
	}
}

// AddOperator registers fn for the named operator, replacing any handler
// registered before.
func (p *Processor) AddOperator(name string, fn OperatorFunc) error {
	if name == "" {
		return ErrInvalidOperator
	}
	if fn == nil {
		return fmt.Errorf("operator %q: %w", name, ErrNilHandler)
	}
	p.handlers[name] = fn
	return nil
}

// HasOperator reports whether a handler is registered for name.
func (p *Processor) HasOperator(name string) bool {
	_, ok := p.handlers[name]
	return ok
}

// Operators returns the registered operator names in sorted order.
func (p *Processor) Operators() []string {
	names := make([]string, 0, len(p.handlers))
	for name := range p.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetStrict makes operations without a handler fail Process instead of
// being counted and skipped.
func (p *Processor) SetStrict(strict bool) {
	p.strict = strict
}

// Strict reports whether strict operator mode is on.
func (p *Processor) Strict() bool {
	return p.strict
}

// Process runs ops in order.
func (p *Processor) Process(ops []Operation) error {
	for i, op := range ops {
		fn, ok := p.handlers[op.Operator]
		if !ok {
			if p.strict {
				return fmt.Errorf("operation %d (%s): %w", i, op.Operator, ErrUnsupportedOperator)
			}
			p.unsupported[op.Operator]++
			continue
		}

		if err := fn(op); err != nil {
			if IsRecoverable(err) {
				p.warnings = append(p.warnings, fmt.Sprintf("operation %d (%s): %v", i, op.Operator, err))
				continue
			}
			return fmt.Errorf("operation %d (%s): %w", i, op.Operator, err)
		}
	}
	return nil
}

// Unsupported returns how often each operator without a handler was seen.
func (p *Processor) Unsupported() map[string]int {
	out := make(map[string]int, len(p.unsupported))
	for k, v := range p.unsupported {
		out[k] = v
	}
	return out
}

// Warnings returns the recoverable handler errors collected so far.
func (p *Processor) Warnings() []string {
	return p.warnings
}

// AddWarning records a warning raised outside a handler.
func (p *Processor) AddWarning(msg string) {
	p.warnings = append(p.warnings, msg)
}

// IsRecoverable reports whether err is a handler error that processing
// tolerates.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrMissingOperand) ||
		errors.Is(err, ErrMissingResource) ||
		errors.Is(err, ErrEmptyStack)
}
