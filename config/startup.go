/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import "path/filepath"

const (
	// DefaultHome is the default installation directory.
	DefaultHome = "."
	// DefaultConfigFileName is the config file name under the home directory.
	DefaultConfigFileName = "config.yaml"
	// DefaultLogConfigFileName is the log config file name under the home directory.
	DefaultLogConfigFileName = "logging.yaml"
)

// Startup records where the process was started from: the installation
// home and the locations of the main and logging configuration files.
// It is carried for introspection only; this subsystem never reads the
// files itself.
type Startup struct {
	// Home is the installation directory.
	Home string
	// ConfigFile is the main configuration file location.
	ConfigFile string
	// LogConfigFile is the logging configuration file location.
	LogConfigFile string
}

// NewStartup constructs a Startup from the given options, defaulting any
// unset location relative to Home.
func NewStartup(opts ...StartupOption) Startup {
	s := Startup{Home: DefaultHome}
	for _, opt := range opts {
		opt(&s)
	}
	if s.ConfigFile == "" {
		s.ConfigFile = filepath.Join(s.Home, DefaultConfigFileName)
	}
	if s.LogConfigFile == "" {
		s.LogConfigFile = filepath.Join(s.Home, DefaultLogConfigFileName)
	}
	return s
}

// StartupOption is a functional option that mutates a Startup during construction.
type StartupOption func(*Startup)

// WithHome sets the installation directory.
func WithHome(home string) StartupOption {
	return func(s *Startup) {
		if home != "" {
			s.Home = home
		}
	}
}

// WithConfigFile sets the main configuration file location.
func WithConfigFile(path string) StartupOption {
	return func(s *Startup) {
		s.ConfigFile = path
	}
}

// WithLogConfigFile sets the logging configuration file location.
func WithLogConfigFile(path string) StartupOption {
	return func(s *Startup) {
		s.LogConfigFile = path
	}
}
