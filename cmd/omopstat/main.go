// Package main provides the omopstat CLI application.
// omopstat computes per-concept statistical summaries from OMOP CDM
// event tables, compares concept distributions, and searches concept
// labels fuzzily.
package main

func main() {
	Execute()
}
