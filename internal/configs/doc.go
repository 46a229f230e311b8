// Package configs loads vaultrunner configuration.
//
// Settings are resolved in increasing precedence:
//
//  1. Built-in defaults (Default)
//  2. .vaultrunner.toml in the working directory, or the --config path
//  3. The dotenv file named by secret_store.env_file or VAULTRUNNER_ENV_FILE
//  4. Process environment variables (VAULT_ADDR, VAULT_TOKEN, ...)
//
// The environment is read once into the Config struct and passed explicitly
// to the vault and secret store clients. Nothing in vaultrunner sets
// environment variables for other code to pick up.
//
// # File Format
//
//	[vault]
//	dir = ".vault"
//	common_name = "localhost"
//	listen_address = "0.0.0.0:8200"
//	storage_path = "/vault/data"
//
//	[secret_store]
//	address = "https://127.0.0.1:8200"
//	mount = "secret"
//	secret_namespace = "shared"
//
// The secret store token is never read from or written to the TOML file.
package configs
