// Command ejectd is an interactive safe-removal tool for external drives.
//
// Run without arguments it presents a numbered menu of attached external
// drives; selecting one unmounts every partition and powers the device off.
// Subcommands provide non-interactive equivalents plus hotplug watching,
// eject history, dependency checks, and configuration utilities.
package main
