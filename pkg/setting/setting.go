// Package setting implements the typed settings modules declare to the host.
//
// A Setting pairs a user-facing prompt with a value stored as text in
// pipeline files. The Widget tells a settings UI which control to render;
// headless hosts only read and write the text form. Concrete types perform
// their own validation on SetText, so a pipeline file with an out-of-range
// value fails at load rather than mid-run.
package setting

import (
	"fmt"
	"strconv"
	"strings"
)

// Widget identifies the UI control a setting renders as.
type Widget string

const (
	WidgetText      Widget = "text"
	WidgetChoice    Widget = "choice"
	WidgetImageName Widget = "image name"
	WidgetInteger   Widget = "integer"
	WidgetFloat     Widget = "float"
	WidgetBool      Widget = "binary"
	WidgetAction    Widget = "button"
)

// Marker values that appear verbatim in pipeline files.
const (
	DoNotUse = "Do not use"
	Yes      = "Yes"
	No       = "No"
)

// Sentinel errors returned by SetText implementations.
var (
	ErrUnknownOption = fmt.Errorf("value is not one of the available options")
	ErrBlankValue    = fmt.Errorf("value cannot be blank")
	ErrNotStorable   = fmt.Errorf("setting carries no stored value")
)

// Setting is the interface every declared setting satisfies.
type Setting interface {
	// Prompt returns the question shown next to the control.
	Prompt() string
	// Text returns the value in its pipeline-file form.
	Text() string
	// SetText replaces the value from its pipeline-file form.
	SetText(string) error
	// Widget names the control a UI renders for this setting.
	Widget() Widget
}

// Documented is implemented by settings that carry help text.
type Documented interface {
	Doc() string
}

type base struct {
	prompt string
	doc    string
}

func (b *base) Prompt() string { return b.prompt }
func (b *base) Doc() string    { return b.doc }

// Text is a free-form text setting.
type Text struct {
	base
	value string
}

// NewText creates a text setting with an initial value.
func NewText(prompt, value string) *Text {
	return &Text{base: base{prompt: prompt}, value: value}
}

// WithDoc attaches help text and returns the setting.
func (t *Text) WithDoc(doc string) *Text {
	t.doc = doc
	return t
}

func (t *Text) Text() string { return t.value }

func (t *Text) SetText(value string) error {
	t.value = value
	return nil
}

func (t *Text) Widget() Widget { return WidgetText }

// Choice restricts the value to a fixed option list. The initial value is
// the first option.
type Choice struct {
	base
	options []string
	value   string
}

// NewChoice creates a choice setting over the given options.
func NewChoice(prompt string, options []string) *Choice {
	c := &Choice{base: base{prompt: prompt}, options: options}
	if len(options) > 0 {
		c.value = options[0]
	}
	return c
}

// WithDoc attaches help text and returns the setting.
func (c *Choice) WithDoc(doc string) *Choice {
	c.doc = doc
	return c
}

// Options returns the selectable values.
func (c *Choice) Options() []string { return c.options }

func (c *Choice) Text() string { return c.value }

func (c *Choice) SetText(value string) error {
	for _, option := range c.options {
		if option == value {
			c.value = value
			return nil
		}
	}
	return fmt.Errorf("%q for %q: %w", value, c.prompt, ErrUnknownOption)
}

func (c *Choice) Widget() Widget { return WidgetChoice }

// Is reports whether the current value equals option.
func (c *Choice) Is(option string) bool { return c.value == option }

// ImageName names an image this module provides to the rest of the pipeline.
type ImageName struct {
	base
	value string
}

// NewImageName creates an image-name setting with an initial name.
func NewImageName(prompt, value string) *ImageName {
	return &ImageName{base: base{prompt: prompt}, value: value}
}

// WithDoc attaches help text and returns the setting.
func (n *ImageName) WithDoc(doc string) *ImageName {
	n.doc = doc
	return n
}

func (n *ImageName) Text() string { return n.value }

func (n *ImageName) SetText(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("image name for %q: %w", n.prompt, ErrBlankValue)
	}
	n.value = value
	return nil
}

func (n *ImageName) Widget() Widget { return WidgetImageName }

// Integer is a whole-number setting.
type Integer struct {
	base
	value int
}

// NewInteger creates an integer setting with an initial value.
func NewInteger(prompt string, value int) *Integer {
	return &Integer{base: base{prompt: prompt}, value: value}
}

// WithDoc attaches help text and returns the setting.
func (i *Integer) WithDoc(doc string) *Integer {
	i.doc = doc
	return i
}

// Value returns the parsed number.
func (i *Integer) Value() int { return i.value }

func (i *Integer) Text() string { return strconv.Itoa(i.value) }

func (i *Integer) SetText(value string) error {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%q is not a whole number for %q: %w", value, i.prompt, err)
	}
	i.value = parsed
	return nil
}

func (i *Integer) Widget() Widget { return WidgetInteger }

// Float is a decimal-number setting.
type Float struct {
	base
	value float64
}

// NewFloat creates a float setting with an initial value.
func NewFloat(prompt string, value float64) *Float {
	return &Float{base: base{prompt: prompt}, value: value}
}

// WithDoc attaches help text and returns the setting.
func (f *Float) WithDoc(doc string) *Float {
	f.doc = doc
	return f
}

// Value returns the parsed number.
func (f *Float) Value() float64 { return f.value }

func (f *Float) Text() string {
	return strconv.FormatFloat(f.value, 'g', -1, 64)
}

func (f *Float) SetText(value string) error {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number for %q: %w", value, f.prompt, err)
	}
	f.value = parsed
	return nil
}

func (f *Float) Widget() Widget { return WidgetFloat }

// Bool is a yes/no setting, stored as "Yes" or "No".
type Bool struct {
	base
	value bool
}

// NewBool creates a yes/no setting with an initial value.
func NewBool(prompt string, value bool) *Bool {
	return &Bool{base: base{prompt: prompt}, value: value}
}

// WithDoc attaches help text and returns the setting.
func (b *Bool) WithDoc(doc string) *Bool {
	b.doc = doc
	return b
}

// Value returns the parsed flag.
func (b *Bool) Value() bool { return b.value }

func (b *Bool) Text() string {
	if b.value {
		return Yes
	}
	return No
}

func (b *Bool) SetText(value string) error {
	switch strings.TrimSpace(value) {
	case Yes:
		b.value = true
	case No:
		b.value = false
	default:
		return fmt.Errorf("%q for %q must be %q or %q: %w", value, b.prompt, Yes, No, ErrUnknownOption)
	}
	return nil
}

func (b *Bool) Widget() Widget { return WidgetBool }

// Action is a button. It never appears in the stored settings of a pipeline
// and exists only on the visible surface; pressing it runs the callback.
type Action struct {
	base
	label   string
	onPress func()
}

// NewAction creates a button with a label and a press callback.
func NewAction(prompt, label string, onPress func()) *Action {
	return &Action{base: base{prompt: prompt}, label: label, onPress: onPress}
}

// Label returns the text on the button.
func (a *Action) Label() string { return a.label }

// Press runs the callback.
func (a *Action) Press() {
	if a.onPress != nil {
		a.onPress()
	}
}

func (a *Action) Text() string { return "" }

func (a *Action) SetText(string) error {
	return fmt.Errorf("action %q: %w", a.label, ErrNotStorable)
}

func (a *Action) Widget() Widget { return WidgetAction }
