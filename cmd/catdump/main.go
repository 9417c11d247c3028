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


// catdump prints a stored catalog file (json, csv, or txt) as a table.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/poiesic/declass/catalog"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <catalog.json|csv|txt>\n", os.Args[0])
		os.Exit(2)
	}

	path := os.Args[1]
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	records, err := catalog.ReadFile(f, path)
	if err != nil {
		log.Fatal(err)
	}

	for _, r := range records {
		fmt.Printf("%-20s %-12s %s\n", r.Identifier, r.ReleaseDate, r.URL)
	}
	fmt.Printf("%d records\n", len(records))
}
