package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags and the additional
// cross-field constraints struct tags can't express (sink-specific
// required fields, interface name uniqueness).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return describeValidationError(err)
	}
	seen := make(map[string]bool, len(cfg.Network.Interfaces))
	for _, iface := range cfg.Network.Interfaces {
		if seen[iface.Name] {
			return fmt.Errorf("network.interfaces: duplicate interface name %q", iface.Name)
		}
		seen[iface.Name] = true
	}
	return validateSink(&cfg.Status)
}

func validateSink(cfg *StatusConfig) error {
	switch cfg.SinkKind {
	case "":
		return nil
	case "gorm":
		if cfg.Gorm.DSN == "" {
			return fmt.Errorf("status.gorm.dsn is required when status.sink is \"gorm\"")
		}
	case "badger":
		if cfg.Badger.Dir == "" {
			return fmt.Errorf("status.badger.dir is required when status.sink is \"badger\"")
		}
	case "s3":
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("status.s3.bucket is required when status.sink is \"s3\"")
		}
	}
	return nil
}

// describeValidationError turns validator's field-level errors into a
// single readable message instead of validator's internal Go-struct
// field paths.
func describeValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}

	joined := msgs[0]
	for _, m := range msgs[1:] {
		joined += "; " + m
	}
	return fmt.Errorf("%s", joined)
}
