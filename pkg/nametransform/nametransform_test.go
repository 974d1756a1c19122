package nametransform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestISOTransform_Level1(t *testing.T) {
	t.Run("stem and extension truncated to 8.3", func(t *testing.T) {
		out := ISOTransform("readme.txtfile", false, Level1, false)
		require.Equal(t, "README.TXT", string(out))
	})

	t.Run("directory names never get a version suffix", func(t *testing.T) {
		out := ISOTransform("subdir", true, Level1, true)
		require.Equal(t, "SUBDIR", string(out))
	})

	t.Run("lowercase and invalid chars are normalized", func(t *testing.T) {
		out := ISOTransform("my file!.c", false, Level1, false)
		require.Equal(t, "MY_FILE_.C", string(out))
	})

	t.Run("version suffix appended for files when requested", func(t *testing.T) {
		out := ISOTransform("a.b", false, Level1, true)
		require.Equal(t, "A.B;1", string(out))
	})
}

func TestISOTransform_Level3NameCap(t *testing.T) {
	long := "this-is-a-very-long-filename-that-exceeds-the-level-three-cap.extension"
	out := ISOTransform(long, false, Level3, false)
	require.LessOrEqual(t, len(out), 31)
}

func TestISOTransform_NeverEmpty(t *testing.T) {
	out := ISOTransform("...", false, Level1, false)
	require.NotEmpty(t, out)
}

func TestInterchangeLevel_AllowsFragmentation(t *testing.T) {
	require.False(t, Level1.AllowsFragmentation())
	require.False(t, Level2.AllowsFragmentation())
	require.True(t, Level3.AllowsFragmentation())
	require.False(t, Level1999.AllowsFragmentation())
}

func TestJolietTransform(t *testing.T) {
	t.Run("short name round trips to UCS-2 big endian", func(t *testing.T) {
		out := JolietTransform("hello.txt", false, false, false)
		require.Equal(t, len("hello.txt")*2, len(out))
		require.Equal(t, byte(0), out[0])
		require.Equal(t, byte('h'), out[1])
	})

	t.Run("disallowed characters are replaced", func(t *testing.T) {
		out := JolietTransform("a*b", false, false, false)
		decoded := make([]rune, 0, 3)
		for i := 0; i+1 < len(out); i += 2 {
			decoded = append(decoded, rune(out[i])<<8|rune(out[i+1]))
		}
		require.Equal(t, []rune{'a', '_', 'b'}, decoded)
	})

	t.Run("truncates to the short name cap", func(t *testing.T) {
		long := make([]byte, 0, 80)
		for i := 0; i < 80; i++ {
			long = append(long, 'a')
		}
		out := JolietTransform(string(long), false, false, false)
		require.LessOrEqual(t, len(out)/2, 64)
	})

	t.Run("long names allow up to 101 characters", func(t *testing.T) {
		long := make([]byte, 0, 120)
		for i := 0; i < 120; i++ {
			long = append(long, 'a')
		}
		out := JolietTransform(string(long), false, true, false)
		require.Equal(t, 101, len(out)/2)
	})
}

func TestUDFTransform(t *testing.T) {
	t.Run("ascii-only names use the 8-bit compression id", func(t *testing.T) {
		out := UDFTransform("readme.txt")
		require.Equal(t, byte(8), out[0])
		require.Equal(t, len("readme.txt")+1, len(out))
	})

	t.Run("non-latin1 names use the 16-bit compression id", func(t *testing.T) {
		out := UDFTransform("hélloあ")
		require.Equal(t, byte(16), out[0])
	})
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("first occurrence passes through unchanged", func(t *testing.T) {
		r := NewResolver(UnitASCII)
		frozen, warn := r.Resolve([]byte("FOO.TXT"), 0)
		require.False(t, warn)
		require.Equal(t, "FOO.TXT", string(frozen))
	})

	t.Run("collision rewrites trailing stem bytes with a counter", func(t *testing.T) {
		r := NewResolver(UnitASCII)
		first, _ := r.Resolve([]byte("LONGNAME.TXT"), 0)
		second, warn := r.Resolve([]byte("LONGNAME.TXT"), 0)
		require.False(t, warn)
		require.NotEqual(t, string(first), string(second))
		require.True(t, len(second) == len(first))
	})

	t.Run("short names that collide cannot be disambiguated", func(t *testing.T) {
		r := NewResolver(UnitASCII)
		r.Resolve([]byte("A"), 0)
		_, warn := r.Resolve([]byte("A"), 0)
		require.True(t, warn)
	})

	t.Run("version suffix is preserved across disambiguation", func(t *testing.T) {
		r := NewResolver(UnitASCII)
		r.Resolve([]byte("LONGNAME.TXT;1"), 2)
		frozen, warn := r.Resolve([]byte("LONGNAME.TXT;1"), 2)
		require.False(t, warn)
		require.Equal(t, ";1", string(frozen[len(frozen)-2:]))
	})
}
