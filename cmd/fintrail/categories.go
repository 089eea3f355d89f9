package main

import (
	"github.com/spf13/cobra"

	"github.com/karanvs/fintrail/internal/analytics"
	"github.com/karanvs/fintrail/internal/model"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the classification taxonomy",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%-20s %-20s %s\n", "ID", "NAME", "MONTHLY BUDGET")
			for _, cat := range model.Categories() {
				if budget, ok := analytics.DefaultBudgets[cat.ID]; ok {
					cmd.Printf("%-20s %-20s %.0f\n", cat.ID, cat.Name, budget)
					continue
				}
				cmd.Printf("%-20s %-20s -\n", cat.ID, cat.Name)
			}
		},
	}
}
