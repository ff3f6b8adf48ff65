package session

import (
	"fmt"
	"regexp"
)

// Prompts holds every literal the session matches or sends. Firmware prompt
// text is an external contract, so each value can be overridden; empty
// fields take the defaults from DefaultPrompts.
type Prompts struct {
	Login    string `mapstructure:"login" yaml:"login,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	Vendor   string `mapstructure:"vendor" yaml:"vendor,omitempty"`
	General  string `mapstructure:"general" yaml:"general,omitempty"`

	EnterGeneral string `mapstructure:"enter_general" yaml:"enter_general,omitempty"`
	EnterVendor  string `mapstructure:"enter_vendor" yaml:"enter_vendor,omitempty"`

	// HostAuthenticity is a regular expression; all other patterns are
	// matched literally.
	HostAuthenticity       string `mapstructure:"host_authenticity" yaml:"host_authenticity,omitempty"`
	HostAuthenticityAnswer string `mapstructure:"host_authenticity_answer" yaml:"host_authenticity_answer,omitempty"`
	CopyPassword           string `mapstructure:"copy_password" yaml:"copy_password,omitempty"`
}

// DefaultPrompts returns the prompt set used by stock rkscli firmware.
func DefaultPrompts() Prompts {
	return Prompts{
		Login:                  "login: ",
		Password:               "password : ",
		Vendor:                 "rkscli: ",
		General:                "# ",
		EnterGeneral:           "!v54!",
		EnterVendor:            "rkscli",
		HostAuthenticity:       "Do you want to continue connecting.*",
		HostAuthenticityAnswer: "yes",
		CopyPassword:           "password:",
	}
}

// withDefaults fills every empty field from DefaultPrompts.
func (p Prompts) withDefaults() Prompts {
	d := DefaultPrompts()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&p.Login, d.Login)
	fill(&p.Password, d.Password)
	fill(&p.Vendor, d.Vendor)
	fill(&p.General, d.General)
	fill(&p.EnterGeneral, d.EnterGeneral)
	fill(&p.EnterVendor, d.EnterVendor)
	fill(&p.HostAuthenticity, d.HostAuthenticity)
	fill(&p.HostAuthenticityAnswer, d.HostAuthenticityAnswer)
	fill(&p.CopyPassword, d.CopyPassword)
	return p
}

// compile validates the regular-expression prompts.
func (p Prompts) compile() (*regexp.Regexp, error) {
	re, err := regexp.Compile(p.HostAuthenticity)
	if err != nil {
		return nil, fmt.Errorf("host authenticity pattern %q: %w", p.HostAuthenticity, err)
	}
	return re, nil
}

// prompt returns the ready prompt shown while m is active.
func (p Prompts) prompt(m Mode) string {
	if m == ModeGeneral {
		return p.General
	}
	return p.Vendor
}
