package factories

import (
	"github.com/AnotherFullstackDev/deployctl/internal/config"
	"github.com/AnotherFullstackDev/deployctl/internal/lib"
)

type SharedServicesLocator struct {
	Config                     config.Config
	RegistryCredentialsStorage lib.CredentialsStorage
}

func NewSharedServicesLocator(cfg config.Config, registryCredentialsStorage lib.CredentialsStorage) *SharedServicesLocator {
	return &SharedServicesLocator{
		Config:                     cfg,
		RegistryCredentialsStorage: registryCredentialsStorage,
	}
}
