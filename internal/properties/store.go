package properties

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/System-rat/mcsmp/internal/models"
)

// Pair 构造 Store 时使用的初始键值
type Pair struct {
	Key   Key
	Value any
}

/**
 * Typed server.properties store
 * @description
 * - Every stored key is in the schema and its value passes the validator, or is nil
 * - Keys keep insertion order so the file is written back in a stable order
 * - Safe for concurrent use
 */
type Store struct {
	mu     sync.RWMutex
	keys   []Key
	values map[Key]any
}

func validate(key Key, value any) error {
	v, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("unknown property %q: %w", key, models.ErrValidation)
	}
	if value != nil && !v.Check(value) {
		return fmt.Errorf("property %q expects %s, got %v: %w", key, v.Kind, value, models.ErrValidation)
	}
	return nil
}

/**
 * Create a store from initial pairs
 * @param {...Pair} pairs - Initial keys and values
 * @returns {*Store} New store
 * @returns {error} Wraps models.ErrValidation if any pair is rejected, nothing is kept in that case
 */
func NewStore(pairs ...Pair) (*Store, error) {
	s := &Store{values: make(map[Key]any, len(pairs))}
	for _, p := range pairs {
		if err := validate(p.Key, p.Value); err != nil {
			return nil, err
		}
		s.put(p.Key, p.Value)
	}
	return s, nil
}

func (s *Store) put(key Key, value any) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Set 设置属性值，nil 总是允许的
func (s *Store) Set(key Key, value any) error {
	if err := validate(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.put(key, value)
	s.mu.Unlock()
	return nil
}

/**
 * Set several properties at once
 * @param {map[Key]any} values - New values, JSON numbers are accepted for integer keys
 * @returns {error} Wraps models.ErrValidation, in which case the store is unchanged
 */
func (s *Store) Apply(values map[Key]any) error {
	normalized := make(map[Key]any, len(values))
	for k, v := range values {
		v = normalizeValue(k, v)
		if err := validate(k, v); err != nil {
			return err
		}
		normalized[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range SchemaKeys() {
		if v, ok := normalized[k]; ok {
			s.put(k, v)
		}
	}
	return nil
}

func normalizeValue(key Key, value any) any {
	v, ok := Lookup(key)
	if !ok || v.Kind != KindInteger {
		return value
	}
	switch n := value.(type) {
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n)
		}
	case json.Number:
		if i, err := strconv.Atoi(n.String()); err == nil {
			return i
		}
	case int64:
		return int(n)
	}
	return value
}

// Get 读取属性，从未设置过的属性返回 ErrValidation
func (s *Store) Get(key Key) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, fmt.Errorf("property %q is not set: %w", key, models.ErrValidation)
	}
	return v, nil
}

func (s *Store) Bool(key Key) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (s *Store) Int(key Key) (int, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	i, _ := v.(int)
	return i, nil
}

func (s *Store) String(key Key) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	str, _ := v.(string)
	return str, nil
}

// Keys 按插入顺序返回已设置的属性名
func (s *Store) Keys() []Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, len(s.keys))
	copy(keys, s.keys)
	return keys
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &Store{values: make(map[Key]any, len(s.values))}
	for _, k := range s.keys {
		c.put(k, s.values[k])
	}
	return c
}

// Equal 比较两个 Store 的键集合和值，不考虑顺序
func (s *Store) Equal(o *Store) bool {
	a, b := s.snapshot(), o.snapshot()
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		ov, ok := b[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

func (s *Store) snapshot() map[Key]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := make(map[Key]any, len(s.values))
	for k, v := range s.values {
		m[k] = v
	}
	return m
}

// Replace 用另一个 Store 的内容替换当前内容
func (s *Store) Replace(o *Store) {
	c := o.Clone()
	s.mu.Lock()
	s.keys = c.keys
	s.values = c.values
	s.mu.Unlock()
}

func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

/**
 * Parse server.properties text
 * @param {string} text - File content
 * @returns {*Store} Parsed store
 * @returns {error} Wraps models.ErrValidation if a coerced value fails its validator
 * @description
 * - Lines starting with '#' or '=' are skipped
 * - Each line is split on the first '='
 * - The first '.' and then the first '-' of a key are translated, other occurrences are kept
 * - Unknown keys are dropped, empty values become nil
 * @example
 * s, _ := FromConfigText("pvp=true\nmax-players=20\n")
 * n, _ := s.Int("max_players") // 20
 */
func FromConfigText(text string) (*Store, error) {
	var pairs []Pair
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "=") {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, raw, _ := strings.Cut(line, "=")
		key := MemoryKey(name)
		v, ok := Lookup(key)
		if !ok {
			continue
		}
		var value any
		if raw != "" {
			value = v.Coerce(raw)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	return NewStore(pairs...)
}

// ToConfigText 按插入顺序输出 key=value 行，nil 输出为空值
func (s *Store) ToConfigText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var b strings.Builder
	for _, k := range s.keys {
		b.WriteString(DiskKey(k))
		b.WriteByte('=')
		if v := s.values[k]; v != nil {
			fmt.Fprint(&b, v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
