// Package vault реализует долговременное клиентское хранилище —
// файловые слоты ключ-значение в каталоге состояния установки.
// Хранятся ровно два значения: bearer-учётные данные сессии
// и идентификатор установки (device id). Файлы создаются
// с правами 0600, каталог — 0700.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	dirMode  = 0o700
	fileMode = 0o600

	credentialSlot = "credential"
	deviceIDSlot   = "device_id"
)

// Vault файловое хранилище слотов ключ-значение.
// Все операции сериализуются через RWMutex: слоты читаются на старте
// и изменяются только из login/logout/establish, конкурентных
// писателей у одного слота не бывает, но защита дешёвая и снимает вопрос.
type Vault struct {
	root string
	mu   sync.RWMutex
}

// New создает Vault с корнем в каталоге root.
func New(root string) *Vault {
	return &Vault{root: filepath.Clean(root)}
}

// Get возвращает значение слота. Отсутствие слота — не ошибка,
// возвращается found=false.
func (v *Vault) Get(key string) (string, bool, error) {
	const op = "vault.Get"

	path, err := v.pathFor(key)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Put записывает значение слота, создавая каталог состояния при необходимости.
func (v *Vault) Put(key, value string) error {
	const op = "vault.Put"

	path, err := v.pathFor(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.MkdirAll(v.root, dirMode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(path, []byte(value), fileMode); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Delete удаляет слот. Удаление отсутствующего слота — не ошибка.
func (v *Vault) Delete(key string) error {
	const op = "vault.Delete"

	path, err := v.pathFor(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Credential возвращает сохранённые bearer-учётные данные, если они есть.
func (v *Vault) Credential() (string, bool, error) {
	return v.Get(credentialSlot)
}

// SetCredential сохраняет bearer-учётные данные.
func (v *Vault) SetCredential(token string) error {
	return v.Put(credentialSlot, token)
}

// ClearCredential стирает сохранённые учётные данные. Идемпотентна.
func (v *Vault) ClearCredential() error {
	return v.Delete(credentialSlot)
}

// DeviceID возвращает идентификатор установки. Генерируется один раз
// при первом обращении и далее стабилен между запусками;
// повторная генерация при живом значении не выполняется.
func (v *Vault) DeviceID() (string, error) {
	const op = "vault.DeviceID"

	id, found, err := v.Get(deviceIDSlot)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if found && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := v.Put(deviceIDSlot, id); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (v *Vault) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid slot key %q", key)
	}
	return filepath.Join(v.root, key), nil
}
