// Package cli provides the interactive SyncDraft command-line client.
//
// It wires configuration, local storage, the API client, the post store with
// autosave and the services into a REPL. Typical flow: restore the stored
// session or prompt for credentials, load the posts, then execute user
// commands until the user leaves.
//
// Key features:
//   - Signup / Login / Logout, profile
//   - List, create, open, edit and delete posts; edits are autosaved
//   - Publish / Unpublish
//   - AI summary and grammar assist with progressive output
//   - Reading published posts and their comments
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
