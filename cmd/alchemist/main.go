// Data Alchemist validates the clients, workers and tasks of a scheduling
// dataset before it is handed to allocation.
//
// Usage:
//
//	# Validate all three entity files
//	alchemist validate --clients clients.csv --workers workers.csv --tasks tasks.xlsx
//
//	# Re-validate whenever an input changes
//	alchemist validate --clients clients.csv --workers workers.csv --tasks tasks.csv --watch
//
//	# Apply every available auto-fix to one entity file
//	alchemist fix --entity clients --input clients.csv --output clients.fixed.csv
//
//	# Serve the HTTP API
//	alchemist serve --config alchemist.yaml
//
//	# Inspect recorded runs
//	alchemist history list --blocked
package main

func main() {
	Execute()
}
