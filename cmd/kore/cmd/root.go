// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd holds the kore subcommands.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinkercat/gremlin-kore/pkg/kore/log"
)

var (
	Root = &cobra.Command{
		Use:               "kore",
		Short:             "kore runs traversal barriers and vertex programs on an in-process graph computer",
		SilenceUsage:      true,
		PersistentPreRunE: setLogger,
	}

	logger   string
	logLevel string
)

func init() {
	Root.PersistentFlags().StringVar(&logger, "log", "standard", "Logger: standard, structural or none")
	Root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Minimum severity: debug, info, warn or error")
	Root.AddCommand(reduceCmd, filterCmd, componentsCmd)
}

func setLogger(*cobra.Command, []string) error {
	sev, err := log.ParseSeverity(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(sev)
	switch logger {
	case "standard":
		log.SetLogger(&log.Standard{})
	case "structural":
		log.SetLogger(&log.Structural{})
	case "none":
		log.SetLogger(discard{})
	default:
		return fmt.Errorf("unknown logger %q", logger)
	}
	return nil
}

type discard struct{}

func (discard) Log(context.Context, log.Severity, int, string) {}
