// Package secure keeps secret values typed at a prompt out of ordinary Go
// memory until they are handed to dotenvx.
//
// Values are held in a memguard enclave: encrypted at rest in memory, kept
// out of swap where mlock is available, and wiped when destroyed. The
// plaintext only exists inside the callback passed to Value.Use.
//
// Call Purge before the process exits to wipe every remaining enclave.
package secure
