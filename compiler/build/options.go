package build

import (
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"tlog.app/go/errors"
)

type (
	OptLevel  int
	Linking   int
	RelocMode int
	CodeModel int

	// Duration is a time.Duration read from text like "30s".
	Duration time.Duration

	// Options is the build configuration.
	// Without EmitIR or Build an object file is built. EmitObject asks for
	// the object explicitly and wins over Build; EmitIR wins over both.
	Options struct {
		Name       string    `json:"name"`
		Triple     string    `json:"target"`
		Opt        OptLevel  `json:"opt"`
		EmitIR     bool      `json:"emit_llvm"`
		EmitObject bool      `json:"emit_object"`
		Build      bool      `json:"build"`
		Linking    Linking   `json:"linking"`
		Path       string    `json:"path"`
		IsMain     bool      `json:"is_main"`
		Reloc      RelocMode `json:"reloc"`
		CodeModel  CodeModel `json:"code_model"`

		Optimizer string   `json:"optimizer"`
		Driver    string   `json:"driver"`
		Timeout   Duration `json:"timeout"`
	}
)

const (
	OptNone OptLevel = iota
	OptLow
	OptMid
	OptMax
)

const (
	LinkStatic Linking = iota
	LinkDynamic
)

const (
	RelocDefault RelocMode = iota
	RelocStatic
	RelocPIC
	RelocDynamicNoPIC
)

const (
	CodeModelDefault CodeModel = iota
	CodeModelSmall
	CodeModelKernel
	CodeModelMedium
	CodeModelLarge
)

const (
	DefaultOptimizer = "opt"
	DefaultDriver    = "clang-18"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrUnknownValue = errors.New("unknown value")

func DefaultOptions() Options {
	return Options{
		Name:      "main",
		IsMain:    true,
		Optimizer: DefaultOptimizer,
		Driver:    DefaultDriver,
		Timeout:   Duration(5 * time.Minute),
	}
}

// LoadOptions reads a JSON config file over base. Keys missing in the file keep base values.
func LoadOptions(name string, base Options) (Options, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return base, errors.Wrap(err, "read config")
	}

	o := base

	err = json.Unmarshal(data, &o)
	if err != nil {
		return base, errors.Wrap(err, "decode config %v", name)
	}

	return o, nil
}

var optNames = []string{"none", "low", "mid", "max"}

func (x OptLevel) String() string { return enumString(optNames, int(x)) }

// Flag is the optimizer pass for the tier.
func (x OptLevel) Flag() string {
	switch x {
	case OptLow:
		return "O1"
	case OptMid:
		return "O2"
	case OptMax:
		return "O3"
	default:
		return "O0"
	}
}

func (x *OptLevel) UnmarshalText(b []byte) error {
	switch string(b) {
	case "0", "O0":
		*x = OptNone
		return nil
	case "1", "O1":
		*x = OptLow
		return nil
	case "2", "O2":
		*x = OptMid
		return nil
	case "3", "O3", "mcqueen":
		*x = OptMax
		return nil
	}

	return enumParse(optNames, b, (*int)(x))
}

var linkingNames = []string{"static", "dynamic"}

func (x Linking) String() string { return enumString(linkingNames, int(x)) }

func (x Linking) Flag() string {
	if x == LinkDynamic {
		return "-dynamic"
	}

	return "--static"
}

func (x *Linking) UnmarshalText(b []byte) error { return enumParse(linkingNames, b, (*int)(x)) }

var relocNames = []string{"default", "static", "pic", "dynamic-no-pic"}

func (x RelocMode) String() string { return enumString(relocNames, int(x)) }

// Flag is the driver flag for the model, "" for the default.
func (x RelocMode) Flag() string {
	switch x {
	case RelocStatic:
		return "-fno-pic"
	case RelocPIC:
		return "-fPIC"
	case RelocDynamicNoPIC:
		return "-mdynamic-no-pic"
	default:
		return ""
	}
}

func (x *RelocMode) UnmarshalText(b []byte) error { return enumParse(relocNames, b, (*int)(x)) }

var codeModelNames = []string{"default", "small", "kernel", "medium", "large"}

func (x CodeModel) String() string { return enumString(codeModelNames, int(x)) }

func (x CodeModel) Flag() string {
	if x == CodeModelDefault {
		return ""
	}

	return "-mcmodel=" + x.String()
}

func (x *CodeModel) UnmarshalText(b []byte) error { return enumParse(codeModelNames, b, (*int)(x)) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrap(err, "duration")
	}

	*d = Duration(v)

	return nil
}

func enumString(names []string, x int) string {
	if x < 0 || x >= len(names) {
		return "unknown"
	}

	return names[x]
}

func enumParse(names []string, b []byte, x *int) error {
	for i, n := range names {
		if n == string(b) {
			*x = i
			return nil
		}
	}

	return errors.Wrap(ErrUnknownValue, "%q", b)
}
