// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package loader extracts ordered text units from document files.
//
// Each file extension maps to an Extractor. Load never returns an error:
// every file yields a core.Document tagged either ok or failed, so a batch
// keeps going when individual files are unsupported or unreadable.
//
// Built-in extractors:
//
//	.pdf          one unit per page (langchaingo documentloaders)
//	.txt .md      one unit (langchaingo documentloaders)
//	.docx         one unit, one line per paragraph (unioffice when licensed)
//	.xlsx         one unit per sheet, tab-separated rows (excelize)
//	.html .htm    one unit from headings, paragraphs and list items (goquery)
//	.pptx         one unit per slide
package loader
