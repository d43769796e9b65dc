package meta

const (
	// CLIName is the binary name and the directory name used under the config home.
	CLIName = "analyticalctl"
	// CLIDescription is shown in the root command's short help.
	CLIDescription = "Disable the Cosmos DB analytical store across an account's containers"
)
