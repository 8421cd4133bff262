package ui

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

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// LoadTemplate parses one of the embedded templates by name. It is kept
// as a function rather than a package-level var so a bad template fails
// at first use with a clear error instead of a package-init panic.
func LoadTemplate(name string) (*template.Template, error) {
	t, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("ui: load template %s: %w", name, err)
	}
	return t, nil
}

// TilesetLink is the view model for one row of the index page.
type TilesetLink struct {
	Name        string
	TileJSONURL string
	MinZoom     int
	MaxZoom     int
}

// IndexData is the template data for templates/index.gohtml.
type IndexData struct {
	Title       string
	Description string
	Tilesets    []TilesetLink
}
