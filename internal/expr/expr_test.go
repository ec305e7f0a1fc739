package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	regs map[string]uint64
	mem  map[uint64]byte
}

func (f fakeEnv) Register(name string) (uint64, bool) {
	v, ok := f.regs[name]
	return v, ok
}

func (f fakeEnv) MemoryByte(addr uint64) byte {
	return f.mem[addr]
}

func TestArithmeticPrecedence(t *testing.T) {
	e, err := Parse("2 + 3 * 4")
	require.NoError(t, err)

	v, err := e.Eval(fakeEnv{})
	require.NoError(t, err)
	require.Equal(t, int64(14), v)
}

func TestHexLiteral(t *testing.T) {
	e, err := Parse("0x10 + 1")
	require.NoError(t, err)

	v, err := e.Eval(fakeEnv{})
	require.NoError(t, err)
	require.Equal(t, int64(17), v)
}

func TestRegisterReference(t *testing.T) {
	e, err := Parse("@V0 + @V1")
	require.NoError(t, err)

	v, err := e.Eval(fakeEnv{regs: map[string]uint64{"V0": 5, "V1": 7}})
	require.NoError(t, err)
	require.Equal(t, int64(12), v)
}

func TestMemoryDereference(t *testing.T) {
	e, err := Parse("[0x200]")
	require.NoError(t, err)

	v, err := e.Eval(fakeEnv{mem: map[uint64]byte{0x200: 0xAB}})
	require.NoError(t, err)
	require.Equal(t, int64(0xAB), v)
}

func TestComparisonAndLogic(t *testing.T) {
	e, err := Parse("@PC == 0x200")
	require.NoError(t, err)

	v, err := e.Eval(fakeEnv{regs: map[string]uint64{"PC": 0x200}})
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestUnknownRegisterErrors(t *testing.T) {
	e, err := Parse("@NOPE")
	require.NoError(t, err)

	_, err = e.Eval(fakeEnv{})
	require.Error(t, err)
}

func TestFormatSubstitution(t *testing.T) {
	out, err := Format("PC={@PC} mem={[0x200]}", fakeEnv{
		regs: map[string]uint64{"PC": 0x200},
		mem:  map[uint64]byte{0x200: 255},
	})
	require.NoError(t, err)
	require.Equal(t, "PC=200 mem=ff", out)
}
