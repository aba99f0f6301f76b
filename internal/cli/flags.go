package cli

import (
	"github.com/spf13/pflag"

	"github.com/alexanderramin/pblcoach/internal/domain"
)

// sourceFlag binds --source on fs and parses it on demand.
type sourceFlag struct {
	raw string
}

func (f *sourceFlag) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.raw, "source", string(domain.SourceTyped),
		"Where the text came from: typed, suggestion or refinement")
}

func (f *sourceFlag) value() (domain.InputSource, error) {
	return domain.ParseInputSource(f.raw)
}
