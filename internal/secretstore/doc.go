// Package secretstore is a thin client for the secret store the vault's
// credential unlocks.
//
// HTTPClient speaks the KV version 2 HTTP API directly:
//
//	POST   /v1/<mount>/data/<path>              write {"data": {"value": ...}}
//	GET    /v1/<mount>/data/<path>              read
//	GET    /v1/<mount>/metadata/<path>?list=true
//	DELETE /v1/<mount>/metadata/<path>          remove all versions
//
// Address, token and namespace are passed in ClientConfig. The client never
// reads or sets environment variables and never spawns a CLI process.
package secretstore
