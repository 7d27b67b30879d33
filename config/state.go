package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/sagarc03/userload"
)

const lastActiveKey = "last_active_db"

// ErrNoLastActive is returned when the state file has no usable database name.
var ErrNoLastActive = errors.New("no last active database")

// State is the content of the state file.
type State struct {
	LastActiveDB string `mapstructure:"last_active_db"`
}

// LoadState reads the JSON state file at path. A missing or unreadable file,
// or one without last_active_db, is a KindConfigLoad error; callers fall back
// to a default database.
func LoadState(path string) (State, error) {
	const op = "load state"

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return State{}, userload.NewError(userload.KindConfigLoad, op, fmt.Errorf("read %s: %w", path, err))
	}

	var st State
	if err := v.Unmarshal(&st); err != nil {
		return State{}, userload.NewError(userload.KindConfigLoad, op, fmt.Errorf("unmarshal %s: %w", path, err))
	}

	if st.LastActiveDB == "" {
		return State{}, userload.NewError(userload.KindConfigLoad, op, fmt.Errorf("%s: %w", path, ErrNoLastActive))
	}

	return st, nil
}

// SaveState writes name as the last active database to the JSON file at path.
func SaveState(path, name string) error {
	v := viper.New()
	v.SetConfigType("json")
	v.Set(lastActiveKey, name)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("save state %s: %w", path, err)
	}
	return nil
}
