package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/ember/internal/domain"
)

// levelFlag restricts output to one burnout level. Empty matches all.
type levelFlag struct {
	level domain.BurnoutLevel
}

var _ pflag.Value = (*levelFlag)(nil)

func (f *levelFlag) String() string { return string(f.level) }

func (f *levelFlag) Set(s string) error {
	switch l := domain.BurnoutLevel(strings.ToUpper(strings.TrimSpace(s))); l {
	case domain.LevelGreen, domain.LevelYellow, domain.LevelRed:
		f.level = l
		return nil
	default:
		return fmt.Errorf("must be GREEN, YELLOW or RED")
	}
}

func (f *levelFlag) Type() string { return "level" }

func (f *levelFlag) match(a *domain.BurnoutAnalysis) bool {
	return f.level == "" || a.Level == f.level
}
