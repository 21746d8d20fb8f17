// Package distrib splits a dataset across cooperating processes and lets
// them rendezvous. A run is usually a single process (the local runtime);
// multi-process runs on a shared filesystem are configured through
// environment variables and synchronize with sentinel files.
package distrib
