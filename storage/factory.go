package storage

import (
	"fmt"
	"log"

	"github.com/velatra/photofolio/config"
)

// NewGateway 根据配置创建存储网关
func NewGateway(cfg *config.Config) (Gateway, error) {
	log.Printf("Initializing storage gateway, type: %s", cfg.StorageType)

	switch cfg.StorageType {
	case "minio":
		gateway, err := NewMinioGateway(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		log.Println("Successfully initialized 'minio' storage gateway")
		return gateway, nil

	case "local", "":
		gateway, err := NewLocalGateway(cfg.StorageLocalPath, cfg.PublicBaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		log.Println("Successfully initialized 'local' storage gateway")
		return gateway, nil

	default:
		return nil, fmt.Errorf("invalid storage type: %s", cfg.StorageType)
	}
}
