package properties

import (
	"encoding/json"
	"testing"

	"github.com/System-rat/mcsmp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfigText(t *testing.T) {
	s, err := FromConfigText("pvp=true\n# c\nmax-players=20\nrcon.port=69\ndifficulty=\n")
	require.NoError(t, err)

	pvp, err := s.Get("pvp")
	require.NoError(t, err)
	assert.Equal(t, true, pvp)

	players, err := s.Get("max_players")
	require.NoError(t, err)
	assert.Equal(t, 20, players)

	port, err := s.Get("rcon__port")
	require.NoError(t, err)
	assert.Equal(t, 69, port)

	difficulty, err := s.Get("difficulty")
	require.NoError(t, err)
	assert.Nil(t, difficulty)

	assert.Equal(t, []Key{"pvp", "max_players", "rcon__port", "difficulty"}, s.Keys())
}

func TestFromConfigTextSkipsAndCoerces(t *testing.T) {
	text := "#Minecraft server properties\n" +
		"=orphan\n" +
		"not-a-key=1\n" +
		"hardcore=yes\n" +
		"view-distance=10chunks\n" +
		"spawn-protection=abc\n" +
		"motd=a=b\n" +
		"enable-command-block=true\n"
	s, err := FromConfigText(text)
	require.NoError(t, err)

	hardcore, _ := s.Bool("hardcore")
	assert.False(t, hardcore)
	view, _ := s.Int("view_distance")
	assert.Equal(t, 10, view)
	spawn, _ := s.Int("spawn_protection")
	assert.Equal(t, 0, spawn)
	motd, _ := s.String("motd")
	assert.Equal(t, "a=b", motd)

	// 只替换第一个 '-'，enable_command-block 不在属性表中
	_, err = s.Get("enable_command_block")
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 4, s.Len())
}

func TestFromConfigTextRejectsBadEnum(t *testing.T) {
	_, err := FromConfigText("gamemode=peaceful\n")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestRoundTrip(t *testing.T) {
	values := map[Kind]any{
		KindBoolean: true,
		KindString:  "hello world",
		KindInteger: -25565,
	}
	var pairs []Pair
	for _, k := range SchemaKeys() {
		v, _ := Lookup(k)
		value := values[v.Kind]
		if v.Kind == KindEnum {
			value = v.Allowed[len(v.Allowed)-1]
		}
		pairs = append(pairs, Pair{Key: k, Value: value})
	}
	pairs = append(pairs, Pair{Key: "level_seed", Value: nil})

	s, err := NewStore(pairs...)
	require.NoError(t, err)

	parsed, err := FromConfigText(s.ToConfigText())
	require.NoError(t, err)
	assert.True(t, s.Equal(parsed))
	assert.Equal(t, s.Keys(), parsed.Keys())
}

func TestToConfigText(t *testing.T) {
	s, err := NewStore(
		Pair{"rcon__port", 25575},
		Pair{"max_players", 20},
		Pair{"level_seed", nil},
		Pair{"enable_command_block", false},
	)
	require.NoError(t, err)
	assert.Equal(t, "rcon.port=25575\nmax-players=20\nlevel-seed=\nenable-command_block=false\n", s.ToConfigText())
}

func TestSetRejectsInvalid(t *testing.T) {
	s, err := NewStore(Pair{"pvp", true})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Set("pvp", "true"), models.ErrValidation)
	assert.ErrorIs(t, s.Set("no_such_key", 1), models.ErrValidation)
	assert.ErrorIs(t, s.Set("difficulty", "impossible"), models.ErrValidation)

	v, err := s.Get("pvp")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	assert.Equal(t, []Key{"pvp"}, s.Keys())

	require.NoError(t, s.Set("difficulty", nil))
	require.NoError(t, s.Set("difficulty", "hard"))
}

func TestNewStoreRejectsInFull(t *testing.T) {
	s, err := NewStore(Pair{"pvp", true}, Pair{"max_players", "twenty"})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, s)
}

func TestGetUnset(t *testing.T) {
	s, err := NewStore()
	require.NoError(t, err)
	_, err = s.Get("motd")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestApply(t *testing.T) {
	s, err := NewStore(Pair{"max_players", 20})
	require.NoError(t, err)

	var body map[Key]any
	require.NoError(t, json.Unmarshal([]byte(`{"max_players": 10, "pvp": false}`), &body))
	require.NoError(t, s.Apply(body))
	n, _ := s.Int("max_players")
	assert.Equal(t, 10, n)

	err = s.Apply(map[Key]any{"motd": "hi", "max_players": 1.5})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = s.Get("motd")
	assert.Error(t, err, "failed apply must not write anything")
}

func TestMarshalJSONKeepsOrder(t *testing.T) {
	s, err := NewStore(Pair{"motd", "hi"}, Pair{"allow_flight", true}, Pair{"level_seed", nil})
	require.NoError(t, err)
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"motd":"hi","allow_flight":true,"level_seed":null}`, string(data))
}

func TestValidator(t *testing.T) {
	assert.True(t, Boolean().Check(false))
	assert.False(t, Boolean().Check("false"))
	assert.True(t, Integer().Check(3))
	assert.False(t, Integer().Check(int64(3)))
	assert.True(t, Enum("a", "b").Check("b"))
	assert.False(t, Enum("a", "b").Check("c"))

	assert.Equal(t, -12, Integer().Coerce("-12abc"))
	assert.Equal(t, 0, Integer().Coerce("-"))
	assert.Equal(t, false, Boolean().Coerce("TRUE"))
	assert.Equal(t, "c", Enum("a").Coerce("c"))
}

func TestKeyTranslation(t *testing.T) {
	assert.Equal(t, "query.port", DiskKey("query__port"))
	assert.Equal(t, "resource-pack_sha1", DiskKey("resource_pack_sha1"))
	assert.Equal(t, Key("query__port"), MemoryKey("query.port"))
	assert.Equal(t, Key("resource_pack-sha1"), MemoryKey("resource-pack-sha1"))
	assert.Len(t, SchemaKeys(), 45)
}
