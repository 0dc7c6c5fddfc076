// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"strconv"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/shenwei356/util/pathutil"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "~/.edmatrix.toml"

// Config holds default values of flags, read from a TOML file:
//
//	threads     = 8
//	semi-global = true
//	max-errors  = 3
//	word-size   = 64
//
// Missing keys leave the defaults of the flags untouched.
type Config struct {
	Threads    *int  `toml:"threads"`
	SemiGlobal *bool `toml:"semi-global"`
	MaxErrors  *int  `toml:"max-errors"`
	WordSize   *int  `toml:"word-size"`

	File string `toml:"-"` // the file it is read from, empty for none
}

// loadConfig reads a config file. If file is empty, the default one
// is read when it exists.
func loadConfig(file string) (*Config, error) {
	cfg := &Config{}

	explicit := file != ""
	if !explicit {
		file = defaultConfigFile
	}

	path, err := homedir.Expand(file)
	if err != nil {
		return nil, errors.Wrap(err, file)
	}
	existed, err := pathutil.Exists(path)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if !existed {
		if explicit {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, nil
	}

	fh, err := xopen.Ropen(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config file: %s", path)
	}

	dec := toml.NewDecoder(fh)
	dec.DisallowUnknownFields()
	if err = dec.Decode(cfg); err != nil {
		fh.Close()
		return nil, errors.Wrapf(err, "parse config file: %s", path)
	}
	cfg.File = path

	return cfg, fh.Close()
}

// apply sets the flags of a command not given on the command line.
func (cfg *Config) apply(cmd *cobra.Command) error {
	set := func(name, value string) error {
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			return nil
		}
		return errors.Wrapf(cmd.Flags().Set(name, value), "config file %s", cfg.File)
	}

	if cfg.Threads != nil {
		if err := set("threads", strconv.Itoa(*cfg.Threads)); err != nil {
			return err
		}
	}
	if cfg.SemiGlobal != nil {
		if err := set("semi-global", strconv.FormatBool(*cfg.SemiGlobal)); err != nil {
			return err
		}
	}
	if cfg.MaxErrors != nil {
		if err := set("max-errors", strconv.Itoa(*cfg.MaxErrors)); err != nil {
			return err
		}
	}
	if cfg.WordSize != nil {
		if err := set("word-size", strconv.Itoa(*cfg.WordSize)); err != nil {
			return err
		}
	}
	return nil
}
