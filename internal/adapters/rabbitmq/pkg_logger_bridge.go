package rabbitmq

import (
	"ads-service/internal/core/port"
	"ads-service/pkg/rabbitmq/rabbitmq_common"
)

// PortLoggerBridge адаптирует port.LoggerPort к интерфейсу логгера pkg/rabbitmq
type PortLoggerBridge struct {
	logger port.LoggerPort
}

func NewPortLoggerBridge(logger port.LoggerPort) *PortLoggerBridge {
	return &PortLoggerBridge{logger: logger}
}

var _ rabbitmq_common.Logger = (*PortLoggerBridge)(nil)

func (b *PortLoggerBridge) Debug(msg string, args ...interface{}) {
	b.logger.Debug(msg, argsToFields(args))
}

func (b *PortLoggerBridge) Info(msg string, args ...interface{}) {
	b.logger.Info(msg, argsToFields(args))
}

func (b *PortLoggerBridge) Warn(msg string, args ...interface{}) {
	b.logger.Warn(msg, argsToFields(args))
}

func (b *PortLoggerBridge) Error(err error, msg string, args ...interface{}) {
	b.logger.Error(msg, err, argsToFields(args))
}

// argsToFields собирает пары ключ-значение в Fields
func argsToFields(args []interface{}) port.Fields {
	if len(args) == 0 {
		return nil
	}
	fields := make(port.Fields, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	return fields
}
