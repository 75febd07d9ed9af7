// Package catalog enumerates the selectable case options and their prices.
// All option sets are closed; parsing an unknown value is an error.
package catalog

import (
	"encoding/json"
	"fmt"
)

// BasePriceCents is the price of a case before material and finish increments.
const BasePriceCents = 1400

// Color identifies one of the available case colors.
type Color int

const (
	ColorBlack Color = iota
	ColorBlue
	ColorRose
	ColorWhite

	numColors
)

// colorInfo is indexed by Color. Adding a Color constant without extending
// this table shifts every later entry, which the completeness test catches.
var colorInfo = [numColors]struct {
	label string
	value string
	tw    string
}{
	ColorBlack: {label: "Black", value: "black", tw: "zinc-900"},
	ColorBlue:  {label: "Blue", value: "blue", tw: "blue-950"},
	ColorRose:  {label: "Rose", value: "rose", tw: "rose-950"},
	ColorWhite: {label: "White", value: "white", tw: "gray-200"},
}

// colorBackgroundClass and colorBorderClass replace the dynamic
// enum-keyed style maps with exhaustive per-variant tables.
var colorBackgroundClass = [numColors]string{
	ColorBlack: "bg-zinc-900",
	ColorBlue:  "bg-blue-950",
	ColorRose:  "bg-rose-950",
	ColorWhite: "bg-white",
}

var colorBorderClass = [numColors]string{
	ColorBlack: "border-zinc-900",
	ColorBlue:  "border-blue-950",
	ColorRose:  "border-rose-950",
	ColorWhite: "border-gray-200",
}

func (c Color) Label() string { return colorInfo[c].label }
func (c Color) String() string { return colorInfo[c].value }

// Tailwind returns the color token used by the storefront UI.
func (c Color) Tailwind() string { return colorInfo[c].tw }

// BackgroundClass returns the swatch background class for the color.
func (c Color) BackgroundClass() string { return colorBackgroundClass[c] }

// BorderClass returns the selection border class for the color.
func (c Color) BorderClass() string { return colorBorderClass[c] }

// Model identifies one of the supported phone models.
type Model int

const (
	ModelIPhoneX Model = iota
	ModelIPhone11
	ModelIPhone12
	ModelIPhone13
	ModelIPhone14
	ModelIPhone15

	numModels
)

var modelInfo = [numModels]struct {
	label string
	value string
}{
	ModelIPhoneX:  {label: "iPhone X", value: "iphonex"},
	ModelIPhone11: {label: "iPhone 11", value: "iphone11"},
	ModelIPhone12: {label: "iPhone 12", value: "iphone12"},
	ModelIPhone13: {label: "iPhone 13", value: "iphone13"},
	ModelIPhone14: {label: "iPhone 14", value: "iphone14"},
	ModelIPhone15: {label: "iPhone 15", value: "iphone15"},
}

func (m Model) Label() string  { return modelInfo[m].label }
func (m Model) String() string { return modelInfo[m].value }

// Material identifies one of the available case materials.
type Material int

const (
	MaterialSilicone Material = iota
	MaterialPolycarbonate

	numMaterials
)

var materialInfo = [numMaterials]struct {
	label       string
	value       string
	description string
	priceCents  int
}{
	MaterialSilicone: {
		label: "Silicone",
		value: "silicone",
	},
	MaterialPolycarbonate: {
		label:       "Soft Polycarbonate",
		value:       "polycarbonate",
		description: "Scratch-resistant coating",
		priceCents:  500,
	},
}

func (m Material) Label() string       { return materialInfo[m].label }
func (m Material) String() string      { return materialInfo[m].value }
func (m Material) Description() string { return materialInfo[m].description }
func (m Material) PriceCents() int     { return materialInfo[m].priceCents }

// Finish identifies one of the available case finishes.
type Finish int

const (
	FinishSmooth Finish = iota
	FinishMatte
	FinishTextured

	numFinishes
)

var finishInfo = [numFinishes]struct {
	label       string
	value       string
	description string
	priceCents  int
}{
	FinishSmooth: {
		label: "Smooth Finish",
		value: "smooth",
	},
	FinishMatte: {
		label:       "Matte Finish",
		value:       "matte",
		description: "Fingerprint-resistant surface",
		priceCents:  150,
	},
	FinishTextured: {
		label:       "Textured Finish",
		value:       "textured",
		description: "Soft grippy texture",
		priceCents:  300,
	},
}

func (f Finish) Label() string       { return finishInfo[f].label }
func (f Finish) String() string      { return finishInfo[f].value }
func (f Finish) Description() string { return finishInfo[f].description }
func (f Finish) PriceCents() int     { return finishInfo[f].priceCents }

// UnknownOptionError reports a value outside one of the closed option sets.
type UnknownOptionError struct {
	Option string
	Value  string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Option, e.Value)
}

var (
	colorsByValue    = make(map[string]Color, numColors)
	modelsByValue    = make(map[string]Model, numModels)
	materialsByValue = make(map[string]Material, numMaterials)
	finishesByValue  = make(map[string]Finish, numFinishes)
)

func init() {
	for c := Color(0); c < numColors; c++ {
		colorsByValue[colorInfo[c].value] = c
	}
	for m := Model(0); m < numModels; m++ {
		modelsByValue[modelInfo[m].value] = m
	}
	for m := Material(0); m < numMaterials; m++ {
		materialsByValue[materialInfo[m].value] = m
	}
	for f := Finish(0); f < numFinishes; f++ {
		finishesByValue[finishInfo[f].value] = f
	}
}

// ParseColor resolves a stored color value to its Color.
func ParseColor(value string) (Color, error) {
	c, ok := colorsByValue[value]
	if !ok {
		return 0, &UnknownOptionError{Option: "color", Value: value}
	}
	return c, nil
}

// ParseModel resolves a stored model value to its Model.
func ParseModel(value string) (Model, error) {
	m, ok := modelsByValue[value]
	if !ok {
		return 0, &UnknownOptionError{Option: "model", Value: value}
	}
	return m, nil
}

// ParseMaterial resolves a stored material value to its Material.
func ParseMaterial(value string) (Material, error) {
	m, ok := materialsByValue[value]
	if !ok {
		return 0, &UnknownOptionError{Option: "material", Value: value}
	}
	return m, nil
}

// ParseFinish resolves a stored finish value to its Finish.
func ParseFinish(value string) (Finish, error) {
	f, ok := finishesByValue[value]
	if !ok {
		return 0, &UnknownOptionError{Option: "finish", Value: value}
	}
	return f, nil
}

// Colors returns every selectable color in display order.
func Colors() []Color {
	out := make([]Color, 0, numColors)
	for c := Color(0); c < numColors; c++ {
		out = append(out, c)
	}
	return out
}

// Models returns every supported phone model in display order.
func Models() []Model {
	out := make([]Model, 0, numModels)
	for m := Model(0); m < numModels; m++ {
		out = append(out, m)
	}
	return out
}

// Materials returns every selectable material in display order.
func Materials() []Material {
	out := make([]Material, 0, numMaterials)
	for m := Material(0); m < numMaterials; m++ {
		out = append(out, m)
	}
	return out
}

// Finishes returns every selectable finish in display order.
func Finishes() []Finish {
	out := make([]Finish, 0, numFinishes)
	for f := Finish(0); f < numFinishes; f++ {
		out = append(out, f)
	}
	return out
}

// PriceCents totals the base price with the material and finish increments.
func PriceCents(material Material, finish Finish) int {
	return BasePriceCents + material.PriceCents() + finish.PriceCents()
}

// Options marshal to and from their stored string values.

func (c Color) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *Color) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseColor(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (m Model) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func (m *Model) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseModel(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Material) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func (m *Material) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseMaterial(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (f Finish) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }

func (f *Finish) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseFinish(value)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
