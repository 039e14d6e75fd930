package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	regions = []string{"North", "South", "East", "West"}
	owners  = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank"}
	status  = []string{"Open", "Closed", "On hold"}
)

// Presets
type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

// GetPresetRows returns the number of data rows for a preset
func GetPresetRows(preset SeedPreset) int {
	switch preset {
	case PresetSmall:
		return 20
	case PresetLarge:
		return 5000
	default:
		return 200
	}
}

func main() {
	out := flag.String("out", "sample", "Directory for the sample workbook and job file")
	preset := flag.String("preset", "medium", "Data preset: small, medium, large")
	rows := flag.Int("rows", 0, "Number of data rows (overrides preset)")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	n := *rows
	if n <= 0 {
		n = GetPresetRows(SeedPreset(*preset))
	}

	fmt.Println("Sample source seeder")
	fmt.Println(strings.Repeat("=", 50))

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}
	src := filepath.Join(*out, "source.xlsx")
	if err := writeWorkbook(src, n, rand.New(rand.NewSource(*seed))); err != nil {
		log.Fatalf("writing %s: %v", src, err)
	}
	fmt.Printf("Wrote %s with %d rows\n", src, n)

	job := filepath.Join(*out, "job.yaml")
	if err := os.WriteFile(job, []byte(jobYAML(src)), 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s\n", job)
}

func sheets(n int, rnd *rand.Rand) map[string][][]any {
	main := [][]any{
		{"CONFIG_MANAGER", "sample", "", "", "", ""},
		{"header_format", "blue_header", "blue_header", "blue_header", "green_header", "grey_header"},
		{"lock_sheet_config", "", "unlocked_text", "unlocked_currency", "unlocked_text", "unlocked_date"},
		{"conditional_formatting", "", "Mandatory", "Mandatory", "", ""},
		{"column_width", "14", "18", "14", "14", "16"},
		{"description_header", "Sales region", "Account owner", "Order amount", "Order status", "Due date"},
		{"HEADER", "Region", "Owner", "Amount", "Status", "Due"},
	}
	for i := 0; i < n; i++ {
		main = append(main, []any{
			"",
			regions[rnd.Intn(len(regions))],
			owners[rnd.Intn(len(owners))],
			fmt.Sprintf("%.2f", float64(rnd.Intn(100000))/100),
			status[rnd.Intn(len(status))],
			fmt.Sprintf("2026-%02d-%02d", rnd.Intn(12)+1, rnd.Intn(28)+1),
		})
	}

	dropdown := [][]any{
		{"HEADER", "Region", "Status"},
		{"error_type", "stop", "warning"},
		{"input_title", "Region", "Status"},
	}
	for i := 0; i < len(regions) || i < len(status); i++ {
		row := []any{"", "", ""}
		if i < len(regions) {
			row[1] = regions[i]
		}
		if i < len(status) {
			row[2] = status[i]
		}
		dropdown = append(dropdown, row)
	}

	picklist := [][]any{{"Owners"}}
	for _, o := range owners {
		picklist = append(picklist, []any{o})
	}

	return map[string][][]any{
		"MAIN":           main,
		"Dropdown_Lists": dropdown,
		"Data_Validation": {
			{"apply_to", "validate", "source", "error_type", "input_title", "input_message", "error_title", "error_message"},
			{"Owner", "list", fmt.Sprintf("=Picklists!$A$2:$A$%d", len(owners)+1), "stop", "Owner", "Pick an account owner", "Unknown owner", "Owners come from the list"},
		},
		"Picklists": picklist,
		"Conditional_Formatting": {
			{"apply_to", "type", "criteria", "format"},
			{"Amount", "formula", "=$C3>500", "good_highlight"},
			{"Status", "formula", `=$D3="On hold"`, "neutral_highlight"},
		},
	}
}

func writeWorkbook(path string, n int, rnd *rand.Rand) error {
	f := excelize.NewFile()
	defer f.Close()

	data := sheets(n, rnd)
	order := []string{"MAIN", "Dropdown_Lists", "Data_Validation", "Picklists", "Conditional_Formatting"}
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}
		for r, row := range data[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

func jobYAML(src string) string {
	return fmt.Sprintf(`project: Sample
variables:
  SHEET_PASSWORD: sample
source:
  path: %s
templates:
  - main: MAIN
    sheet_name: Orders
    extra_rows: true
split:
  column: Region
protection:
  sheet_password: ${SHEET_PASSWORD}
  protect_files: true
output:
  dir: output
`, src)
}
