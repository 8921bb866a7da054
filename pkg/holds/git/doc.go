// Package git syncs the legal hold registry from a git repository, so
// holds are added and lifted through reviewed commits instead of edits on
// the host running the sweeps.
//
// A Syncer clones the configured repository on first use and pulls before
// each sweep. The registry file inside the checkout (RegistryPath) is then
// loaded by the holds package like any local file. Authentication supports
// personal access tokens over HTTPS, SSH keys, and none for public
// repositories.
package git
