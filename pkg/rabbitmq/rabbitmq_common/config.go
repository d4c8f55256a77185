package rabbitmq_common

import "fmt"

// Config - базовая конфигурация подключения, общая для всех клиентов
type Config struct {
	URL string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("rabbitmq: connection URL is required")
	}
	return nil
}
