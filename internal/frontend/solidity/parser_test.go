package solidity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

const vaultSrc = `
pragma solidity ^0.8.0;

contract Vault {
    address public owner;
    mapping(address => uint256) balances;
    uint256 private total;

    event Deposited(address indexed from, uint256 amount);

    constructor() {
        owner = msg.sender;
    }

    function deposit() public payable {
        balances[msg.sender] += msg.value;
        total += msg.value;
        emit Deposited(msg.sender, msg.value);
    }

    function balanceOf(address who) external view returns (uint256) {
        return balances[who];
    }

    function sweep() public onlyOwner {
        payable(owner).transfer(total);
    }
}
`

func TestParse_Vault(t *testing.T) {
	m, err := Parse(vaultSrc)
	require.NoError(t, err)

	assert.Equal(t, "Vault", m.Name)
	assert.Equal(t, model.DialectSolidity, m.Dialect)

	t.Run("pragma", func(t *testing.T) {
		require.NotNil(t, m.Pragma)
		assert.Equal(t, "^0.8.0", m.Pragma.Version)
		assert.True(t, m.Pragma.Floating)
	})

	t.Run("fields", func(t *testing.T) {
		require.Len(t, m.Fields, 3)
		assert.Equal(t, "owner", m.Fields[0].Name)
		assert.Equal(t, ir.VisPublic, m.Fields[0].Visibility)
		assert.Equal(t, ir.TypeAddress, m.Fields[0].Type.Kind)

		assert.Equal(t, "balances", m.Fields[1].Name)
		assert.Equal(t, ir.TypeMapping, m.Fields[1].Type.Kind)
		require.NotNil(t, m.Fields[1].Type.Value)
		assert.Equal(t, ir.TypeInt, m.Fields[1].Type.Value.Kind)
		assert.Equal(t, 256, m.Fields[1].Type.Value.Bits)

		assert.Equal(t, ir.VisPrivate, m.Fields[2].Visibility)
	})

	t.Run("events", func(t *testing.T) {
		require.Len(t, m.Events, 1)
		ev := m.Events[0]
		assert.Equal(t, "Deposited", ev.Name)
		require.Len(t, ev.Fields, 2)
		assert.True(t, ev.Fields[0].Indexed)
		assert.Equal(t, "from", ev.Fields[0].Name)
		assert.False(t, ev.Fields[1].Indexed)
	})

	t.Run("constructor", func(t *testing.T) {
		require.Len(t, m.Constructors, 1)
		body := m.Constructors[0].Body
		require.Len(t, body, 1)
		assert.Equal(t, ir.StmtAssign, body[0].Kind)
		assert.Equal(t, "owner", body[0].Target)
	})

	t.Run("functions", func(t *testing.T) {
		require.Len(t, m.Functions, 3)

		deposit := m.Functions[0]
		assert.Equal(t, "deposit", deposit.Name)
		assert.Equal(t, ir.MutPayable, deposit.Mutability)
		assert.False(t, deposit.DefaultVisibility)
		require.Len(t, deposit.Body, 3)
		assert.Equal(t, ir.StmtEmit, deposit.Body[2].Kind)
		assert.Equal(t, "Deposited", deposit.Body[2].Event)

		balanceOf := m.Functions[1]
		assert.Equal(t, ir.MutView, balanceOf.Mutability)
		assert.Equal(t, ir.VisPublic, balanceOf.Visibility)
		require.NotNil(t, balanceOf.Returns)
		assert.Equal(t, ir.TypeInt, balanceOf.Returns.Kind)

		sweep := m.Functions[2]
		assert.True(t, sweep.Guarded, "only-prefixed modifier implies a caller guard")
		require.Len(t, sweep.Body, 1)
		assert.Equal(t, ir.StmtExternalCall, sweep.Body[0].Kind)
	})
}

func TestParse_CheckedArithmetic(t *testing.T) {
	t.Run("0.8 defaults to checked", func(t *testing.T) {
		m, err := Parse(`
pragma solidity 0.8.19;
contract C {
    uint256 total;
    function bump(uint256 n) public { total += n; }
}`)
		require.NoError(t, err)
		st := m.Functions[0].Body[0]
		assert.True(t, st.Arith)
		assert.True(t, st.Checked)
	})

	t.Run("unchecked block removes the guard", func(t *testing.T) {
		m, err := Parse(`
pragma solidity 0.8.19;
contract C {
    uint256 total;
    function bump(uint256 n) public { unchecked { total += n; } }
}`)
		require.NoError(t, err)
		outer := m.Functions[0].Body[0]
		require.Len(t, outer.Body, 1)
		st := outer.Body[0]
		assert.True(t, st.Arith)
		assert.False(t, st.Checked)
	})

	t.Run("pre-0.8 is unchecked unless SafeMath", func(t *testing.T) {
		m, err := Parse(`
pragma solidity ^0.6.0;
contract C {
    uint256 total;
    function bump(uint256 n) public { total = total + n; }
    function safeBump(uint256 n) public { total = total.add(n); }
}`)
		require.NoError(t, err)
		assert.False(t, m.Functions[0].Body[0].Checked)
		assert.True(t, m.Functions[1].Body[0].Checked)
	})
}

func TestParse_StatementFlags(t *testing.T) {
	m, err := Parse(`
pragma solidity ^0.8.0;
contract Game {
    address owner;

    function play() public {
        if (block.timestamp % 2 == 0) {
            owner = msg.sender;
        }
        require(tx.origin == owner);
    }

    function spin() public returns (uint256) {
        return uint256(blockhash(block.number - 1));
    }
}`)
	require.NoError(t, err)

	play := m.Functions[0]
	require.Len(t, play.Body, 2)
	assert.Equal(t, ir.StmtIf, play.Body[0].Kind)
	assert.True(t, play.Body[0].ReadsTimestamp)
	assert.Equal(t, ir.StmtRequire, play.Body[1].Kind)
	assert.True(t, play.Body[1].ReadsTxOrigin)

	spin := m.Functions[1]
	require.Len(t, spin.Body, 1)
	assert.True(t, spin.Body[0].ReadsBlockRand)
}

func TestParse_ExternalCalls(t *testing.T) {
	m, err := Parse(`
pragma solidity ^0.8.0;
contract Caller {
    address impl;

    function forward(bytes memory data) public {
        impl.delegatecall(data);
    }

    function pay(address to, uint256 amount) public {
        payable(to).transfer(amount);
    }
}`)
	require.NoError(t, err)

	fwd := m.Functions[0].Body[0]
	assert.Equal(t, ir.StmtExternalCall, fwd.Kind)
	assert.True(t, fwd.Delegate)
	assert.Equal(t, "impl", fwd.Callee)

	pay := m.Functions[1].Body[0]
	assert.Equal(t, ir.StmtExternalCall, pay.Kind)
	assert.False(t, pay.Delegate)
	assert.Equal(t, "payable(to)", pay.Callee)
}

func TestParse_Errors(t *testing.T) {
	t.Run("no contract declaration", func(t *testing.T) {
		_, err := Parse("pragma solidity ^0.8.0;")
		var perr *model.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.ParseNotAContract, perr.Kind)
	})

	t.Run("duplicate state variable", func(t *testing.T) {
		_, err := Parse(`contract C { uint256 x; uint256 x; }`)
		var perr *model.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.ParseSyntaxError, perr.Kind)
	})
}

func TestParse_SynthesizedConstructor(t *testing.T) {
	m, err := Parse(`contract C { uint256 x; function get() public view returns (uint256) { return x; } }`)
	require.NoError(t, err)
	require.Len(t, m.Constructors, 1)
	assert.Empty(t, m.Constructors[0].Body)
}

func TestParse_WarnsOnUnloweredConstructs(t *testing.T) {
	m, err := Parse(`
pragma solidity ^0.8.0;
import "./Other.sol";
contract C is Base {
    struct Info { uint256 a; }
    uint256 x;
}`)
	require.NoError(t, err)
	constructs := make([]string, len(m.Warnings))
	for i, w := range m.Warnings {
		constructs[i] = w.Construct
	}
	assert.Contains(t, constructs, "import directive")
	assert.Contains(t, constructs, "inheritance")
	assert.Contains(t, constructs, "struct Info")
}
