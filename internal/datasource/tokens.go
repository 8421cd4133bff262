package datasource

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
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

import "regexp"

// TokenValues holds the runtime values substituted into a layer's SQL
// template, per §4.5.
type TokenValues struct {
	BBoxWKT          string
	Zoom             int
	ScaleDenominator float64
	PixelWidth       float64
}

var tokenPattern = regexp.MustCompile(`!bbox!|!zoom!|!scale_denominator!|!pixel_width!`)

// SubstituteTokens expands the four runtime tokens in a SQL template as
// bound parameter placeholders rather than inline string concatenation
// (§9 Design Notes: "preserve prepared-statement reuse"), returning the
// rewritten query and the positional arguments in placeholder order.
func SubstituteTokens(sqlTemplate string, v TokenValues) (query string, args []any) {
	query = tokenPattern.ReplaceAllStringFunc(sqlTemplate, func(tok string) string {
		switch tok {
		case "!bbox!":
			args = append(args, v.BBoxWKT)
			return "ST_GeomFromText(?)"
		case "!zoom!":
			args = append(args, v.Zoom)
			return "?"
		case "!scale_denominator!":
			args = append(args, v.ScaleDenominator)
			return "?"
		case "!pixel_width!":
			args = append(args, v.PixelWidth)
			return "?"
		default:
			return tok
		}
	})
	return query, args
}
