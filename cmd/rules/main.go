// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"pii-redact/internal/filter"
)

func main() {
	var (
		rulesFile = flag.String("rules-file", "", "Path to false-positive rules file (default: built-in rules)")
		action    = flag.String("action", "", "Action to perform: list, check")
	)
	flag.Parse()

	if *action == "" {
		fmt.Println("Error: --action is required")
		fmt.Println("Usage: pii-rules --action <list|check> [--rules-file <path>]")
		os.Exit(1)
	}

	rules, err := filter.Load(*rulesFile)
	if err != nil {
		fmt.Printf("Error loading rules: %v\n", err)
		os.Exit(1)
	}

	switch *action {
	case "list":
		listRules(rules)
	case "check":
		// Load already compiled every pattern; reaching here means the
		// table is valid.
		fmt.Printf("OK: %d rules compiled (window radius %d)\n", len(rules.Rules), rules.Radius)
	default:
		fmt.Printf("Error: Unknown action '%s'\n", *action)
		fmt.Println("Valid actions: list, check")
		os.Exit(1)
	}
}

func listRules(rules *filter.RuleSet) {
	if len(rules.Rules) == 0 {
		fmt.Println("No rules found.")
		return
	}

	fmt.Printf("Found %d rules (window radius %d):\n\n", len(rules.Rules), rules.Radius)
	for _, rule := range rules.Rules {
		fmt.Printf("ID: %s\n", rule.ID)
		fmt.Printf("Kind: %s\n", rule.Kind)
		fmt.Printf("Scope: %s\n", rule.Scope)
		fmt.Printf("Pattern: %s\n", rule.Pattern)
		if rule.Reason != "" {
			fmt.Printf("Reason: %s\n", rule.Reason)
		}
		fmt.Println("---")
	}
}
