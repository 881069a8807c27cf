package properties

import (
	"strconv"
	"strings"
)

// Kind 校验器类型
type Kind int

const (
	KindBoolean Kind = iota
	KindString
	KindInteger
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

/**
 * Property value validator
 * @property {Kind} Kind - Native type of the value
 * @property {[]string} Allowed - Permitted values, only used by KindEnum
 */
type Validator struct {
	Kind    Kind
	Allowed []string
}

func Boolean() Validator { return Validator{Kind: KindBoolean} }
func String() Validator  { return Validator{Kind: KindString} }
func Integer() Validator { return Validator{Kind: KindInteger} }

func Enum(values ...string) Validator {
	return Validator{Kind: KindEnum, Allowed: values}
}

/**
 * Check whether value already has the validator's native type
 * @param {any} value - Value to check, nil is not accepted here
 * @returns {bool} Returns true if the value is acceptable
 */
func (v Validator) Check(value any) bool {
	switch v.Kind {
	case KindBoolean:
		_, ok := value.(bool)
		return ok
	case KindString:
		_, ok := value.(string)
		return ok
	case KindInteger:
		_, ok := value.(int)
		return ok
	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return false
		}
		for _, a := range v.Allowed {
			if a == s {
				return true
			}
		}
		return false
	}
	return false
}

/**
 * Parse a text token read from server.properties into the native type
 * @param {string} text - Raw value
 * @returns {any} bool for booleans ("true" only), int for integers, text otherwise
 * @description
 * - Integers take an optional sign and leading digits, anything unparsable becomes 0
 * - Enum values are not checked here, the store rejects them afterwards
 */
func (v Validator) Coerce(text string) any {
	switch v.Kind {
	case KindBoolean:
		return text == "true"
	case KindInteger:
		return leadingInt(text)
	default:
		return text
	}
}

func leadingInt(text string) int {
	text = strings.TrimLeft(text, " \t")
	end := 0
	if end < len(text) && (text[end] == '+' || text[end] == '-') {
		end++
	}
	digits := end
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(text[:end])
	if err != nil {
		return 0
	}
	return n
}

// Key 内存中的属性名，'.' 写作 "__"，'-' 写作 "_"
type Key string

// 原版 server.properties 支持的属性
var schemaOrder = []Key{
	"allow_flight", "allow_nether", "broadcast_console_to_ops", "broadcast_rcon_to_ops",
	"difficulty", "enable_command_block", "enable_jmx_monitoring", "enable_rcon",
	"sync_chunk_writes", "enable_query", "force_gamemode", "function_permission_level",
	"gamemode", "generate_structures", "generator_setting", "hardcore", "level_name",
	"level_seed", "level_type", "max_build_height", "max_players", "max_tick_time",
	"max_world_size", "motd", "network_compression_threshold", "online_mode",
	"op_permission_level", "player_idle_timeout", "pvp", "query__port", "rcon__password",
	"rcon__port", "resource_pack", "resource_pack_sha1", "server_ip", "server_port",
	"snooper_enabled", "spawn_animals", "spawn_monsters", "spawn_npcs", "spawn_protection",
	"use_native_transport", "view_distance", "white_list", "enforce_whitelist",
}

var schema = map[Key]Validator{
	"difficulty":                    Enum("peaceful", "easy", "normal", "hard"),
	"function_permission_level":     Integer(),
	"gamemode":                      Enum("survival", "creative", "adventure", "spectator"),
	"generator_setting":             String(),
	"level_name":                    String(),
	"level_seed":                    String(),
	"level_type":                    Enum("default", "flat", "largebiomes", "amplified", "buffet"),
	"max_build_height":              Integer(),
	"max_players":                   Integer(),
	"max_tick_time":                 Integer(),
	"max_world_size":                Integer(),
	"motd":                          String(),
	"network_compression_threshold": Integer(),
	"op_permission_level":           Integer(),
	"player_idle_timeout":           Integer(),
	"query__port":                   Integer(),
	"rcon__password":                String(),
	"rcon__port":                    Integer(),
	"resource_pack":                 String(),
	"resource_pack_sha1":            String(),
	"server_ip":                     String(),
	"server_port":                   Integer(),
	"spawn_protection":              Integer(),
	"view_distance":                 Integer(),
}

func init() {
	for _, k := range schemaOrder {
		if _, ok := schema[k]; !ok {
			schema[k] = Boolean()
		}
	}
}

// Lookup 返回属性的校验器
func Lookup(key Key) (Validator, bool) {
	v, ok := schema[key]
	return v, ok
}

// SchemaKeys 按定义顺序返回所有属性名
func SchemaKeys() []Key {
	keys := make([]Key, len(schemaOrder))
	copy(keys, schemaOrder)
	return keys
}

// DiskKey 内存属性名转为文件中的写法，只替换第一处分隔符
func DiskKey(key Key) string {
	s := strings.Replace(string(key), "__", ".", 1)
	return strings.Replace(s, "_", "-", 1)
}

// MemoryKey 文件中的属性名转为内存写法，只替换第一处分隔符
func MemoryKey(name string) Key {
	s := strings.Replace(name, ".", "__", 1)
	return Key(strings.Replace(s, "-", "_", 1))
}
