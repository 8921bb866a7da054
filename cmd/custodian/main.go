// Custodian is a ticket intake and retention lifecycle tool for IT help desks.
//
// It manages the full life of a ticket file:
//   - Guided intake wizard that triages issues and writes ticket files
//   - Scheduled retention sweeps that archive, verify, and delete expired tickets
//   - Append-only audit trail for every lifecycle action
//   - Legal hold registry that exempts tickets from deletion
//
// Usage:
//
//	# Record a new ticket interactively
//	custodian intake
//
//	# Run a retention sweep once
//	custodian sweep
//
//	# Preview a sweep without touching any files
//	custodian sweep --dry-run
//
//	# Run the scheduler daemon with the admin HTTP server
//	custodian daemon
//
//	# Query the audit trail
//	custodian audit query --action deleted --format json
//
//	# Re-verify archived partitions against their manifests
//	custodian verify
//
//	# Check the configuration and data paths
//	custodian validate
//
// For complete documentation, see: https://github.com/helpdesk-hq/custodian
package main

func main() {
	Execute()
}
