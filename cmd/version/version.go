// Copyright 2021 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Name of the binary printed by the version command.
const Name = "filmrec"

// Build stamps, overridden via ldflags.
var (
	Version    = "unknown-version"
	GitCommit  = "unknown-commit"
	BuildTime  = "unknown-buildtime"
	APIVersion = "v1"
)

// BuildInfo formats the build stamps of filmrec, one field per line.
func BuildInfo() string {
	fields := [][2]string{
		{"Version", Version},
		{"API version", APIVersion},
		{"Go version", runtime.Version()},
		{"Git commit", GitCommit},
		{"Built", BuildTime},
		{"OS/Arch", runtime.GOOS + "/" + runtime.GOARCH},
	}
	var builder strings.Builder
	builder.WriteString(Name + "\n")
	for _, field := range fields {
		_, _ = fmt.Fprintf(&builder, "  %-12s %s\n", field[0]+":", field[1])
	}
	return builder.String()
}
