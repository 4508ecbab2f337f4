package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcharitas/mjolnir/internal/frontend"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

const flipperInk = `
#![cfg_attr(not(feature = "std"), no_std, no_main)]

#[ink::contract]
mod flipper {
    #[ink(storage)]
    pub struct Flipper {
        value: bool,
    }

    impl Flipper {
        #[ink(constructor)]
        pub fn new(init_value: bool) -> Self {
            Self { value: init_value }
        }

        #[ink(message)]
        pub fn flip(&mut self) {
            self.value = !self.value;
        }

        #[ink(message)]
        pub fn get(&self) -> bool {
            self.value
        }
    }
}
`

func TestConvert_InkToSolidity(t *testing.T) {
	m, err := frontend.DetectAndParse(flipperInk)
	require.NoError(t, err)

	res, err := Convert(m, model.DialectSolidity, false)
	require.NoError(t, err)
	assert.Equal(t, model.DialectSolidity, res.TargetType)

	code := res.ConvertedCode
	assert.Contains(t, code, "pragma solidity")
	assert.Contains(t, code, "contract Flipper {")
	assert.Contains(t, code, "bool private value;")
	assert.Contains(t, code, "constructor(bool initValue) {")
	assert.Contains(t, code, "value = initValue;")
	assert.Contains(t, code, "function flip() public {")
	assert.Contains(t, code, "value = !value;")
	assert.Contains(t, code, "function get() public view returns (bool) {")
	assert.Contains(t, code, "return value;")
}

func TestConvert_RoundTrip(t *testing.T) {
	original, err := frontend.DetectAndParse(flipperInk)
	require.NoError(t, err)

	sol, err := Convert(original, model.DialectSolidity, false)
	require.NoError(t, err)

	viaSolidity, err := frontend.DetectAndParse(sol.ConvertedCode)
	require.NoError(t, err, "generated solidity must parse back")
	assert.Equal(t, model.DialectSolidity, viaSolidity.Dialect)

	back, err := Convert(viaSolidity, model.DialectInk, false)
	require.NoError(t, err)

	roundTripped, err := frontend.DetectAndParse(back.ConvertedCode)
	require.NoError(t, err, "generated ink must parse back")

	require.Len(t, roundTripped.Fields, len(original.Fields))
	for i, f := range original.Fields {
		assert.Equal(t, f.Name, roundTripped.Fields[i].Name, "field names survive the round trip")
	}

	require.Len(t, roundTripped.Functions, len(original.Functions))
	for i, fn := range original.Functions {
		assert.Equal(t, fn.Name, roundTripped.Functions[i].Name, "function names survive the round trip")
		assert.Equal(t, fn.Mutability, roundTripped.Functions[i].Mutability, "mutability survives the round trip")
	}

	require.Len(t, roundTripped.Constructors, 1)
	require.Len(t, roundTripped.Constructors[0].Params, 1)
	assert.Equal(t, "init_value", roundTripped.Constructors[0].Params[0].Name)
}

func TestConvert_SameDialectReEmit(t *testing.T) {
	m, err := frontend.DetectAndParse(flipperInk)
	require.NoError(t, err)

	res, err := Convert(m, model.DialectInk, false)
	require.NoError(t, err)
	assert.Contains(t, res.ConvertedCode, "#[ink::contract]")
	assert.Contains(t, res.ConvertedCode, "pub fn flip(&mut self)")

	reparsed, err := frontend.DetectAndParse(res.ConvertedCode)
	require.NoError(t, err)
	assert.Equal(t, "Flipper", reparsed.Name)
}

func TestConvert_SolidityToInk(t *testing.T) {
	m, err := frontend.DetectAndParse(`
pragma solidity ^0.8.0;

contract Bank {
    address public owner;
    mapping(address => uint256) balances;

    event Deposited(address from, uint256 amount);

    constructor() {
        owner = msg.sender;
    }

    function deposit() public payable {
        balances[msg.sender] = msg.value;
        emit Deposited(msg.sender, msg.value);
    }
}`)
	require.NoError(t, err)

	res, err := Convert(m, model.DialectInk, false)
	require.NoError(t, err)

	code := res.ConvertedCode
	assert.Contains(t, code, "#[ink::contract]")
	assert.Contains(t, code, "mod bank {")
	assert.Contains(t, code, "use ink::storage::Mapping;")
	assert.Contains(t, code, "pub owner: AccountId,")
	assert.Contains(t, code, "balances: Mapping<AccountId, u128>,")
	assert.Contains(t, code, "#[ink(event)]")
	assert.Contains(t, code, "#[ink(message, payable)]")
	assert.Contains(t, code, "self.env().caller()", "msg.sender maps to the ink environment")
	assert.Contains(t, code, "self.env().emit_event(Deposited {")
}

func TestConvert_Optimize(t *testing.T) {
	m, err := frontend.DetectAndParse(`
pragma solidity 0.8.19;

contract Treasury {
    uint256 private scratch;
    uint256 public cap = 10 + 20 + 5;
    uint256 total;

    function add(uint256 n) public {
        total = total + n;
    }
}`)
	require.NoError(t, err)

	t.Run("disabled preserves everything", func(t *testing.T) {
		res, err := Convert(m, model.DialectSolidity, false)
		require.NoError(t, err)
		assert.Contains(t, res.ConvertedCode, "scratch")
		assert.Contains(t, res.ConvertedCode, "cap = 10+20+5")
	})

	t.Run("enabled drops dead fields and folds constants", func(t *testing.T) {
		res, err := Convert(m, model.DialectSolidity, true)
		require.NoError(t, err)
		assert.NotContains(t, res.ConvertedCode, "scratch", "never-referenced private field is dead")
		assert.Contains(t, res.ConvertedCode, "cap = 35", "constant default folds")
		assert.Contains(t, res.ConvertedCode, "total", "referenced field survives")
		assert.Contains(t, res.CompilationOutput, "dropped unused field scratch")
	})

	t.Run("optimizer never mutates its input", func(t *testing.T) {
		_, err := Convert(m, model.DialectSolidity, true)
		require.NoError(t, err)
		assert.Len(t, m.Fields, 3)
		assert.Equal(t, "10+20+5", m.Fields[1].Default)
	})
}

func TestConvert_PercentInExpression(t *testing.T) {
	m, err := frontend.DetectAndParse(`
pragma solidity 0.8.19;

contract Lottery {
    uint256 counter;

    function bucket(uint256 n) public view returns (uint256) {
        return n % 10;
    }
}`)
	require.NoError(t, err)

	res, err := Convert(m, model.DialectInk, false)
	require.NoError(t, err)
	assert.Contains(t, res.ConvertedCode, "#[ink(message)]")
	assert.Contains(t, res.ConvertedCode, "n % 10", "modulo operator passes through emission untouched")
	assert.NotContains(t, res.ConvertedCode, "%!", "no printf artifacts in generated source")
}

func TestConvert_UnknownTarget(t *testing.T) {
	m := &ir.ContractModel{Name: "C", Dialect: model.DialectInk}
	_, err := Convert(m, model.Dialect("cobol"), false)
	var cerr *model.ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestConvert_AnonymousContract(t *testing.T) {
	_, err := Convert(&ir.ContractModel{Dialect: model.DialectInk}, model.DialectSolidity, false)
	var cerr *model.ConversionError
	require.ErrorAs(t, err, &cerr)
}

func TestConvert_ReportsLimitations(t *testing.T) {
	m, err := frontend.DetectAndParse(`
pragma solidity ^0.8.0;

contract Proxy {
    address impl;

    function forward(bytes memory data) public {
        impl.delegatecall(data);
    }
}`)
	require.NoError(t, err)

	res, err := Convert(m, model.DialectInk, false)
	require.NoError(t, err)
	assert.NotEmpty(t, res.CompilationOutput, "lossy constructs must be reported, not silently dropped")
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "init_value", toSnake("initValue"))
	assert.Equal(t, "already_snake", toSnake("already_snake"))
	assert.Equal(t, "initValue", toCamel("init_value"))
	assert.Equal(t, "InitValue", toPascal("init_value"))
	assert.Equal(t, "Flipper", toPascal("flipper"))
}

func TestFoldConstant(t *testing.T) {
	cases := []struct {
		in   string
		out  string
		fold bool
	}{
		{"10 + 20 + 5", "35", true},
		{"6 * 7", "42", true},
		{"10 - 4", "6", true},
		{"2 + 3 * 4", "2 + 3 * 4", false}, // mixed precedence left alone
		{"10 - 4 - 3", "10 - 4 - 3", false},
		{"x + 1", "x + 1", false},
		{"42", "42", false},
	}
	for _, tc := range cases {
		got, ok := foldConstant(tc.in)
		assert.Equal(t, tc.fold, ok, tc.in)
		if tc.fold {
			assert.Equal(t, tc.out, got, tc.in)
		}
	}
}

func TestSplitTop(t *testing.T) {
	assert.Equal(t, []string{"a", "f(b, c)", "d"}, splitTop("a, f(b, c), d"))
	assert.Empty(t, splitTop("  "))
}

func TestTranslateExpr_EnvAccessors(t *testing.T) {
	inkModel := &ir.ContractModel{
		Dialect: model.DialectInk,
		Fields:  []ir.StorageField{{Name: "owner", Type: ir.Type{Kind: ir.TypeAddress}}},
	}
	got := translateExpr("self . env ( ) . caller ( ) == self . owner", inkModel, model.DialectSolidity)
	assert.Equal(t, "msg.sender == owner", got)

	solModel := &ir.ContractModel{
		Dialect: model.DialectSolidity,
		Fields:  []ir.StorageField{{Name: "owner", Type: ir.Type{Kind: ir.TypeAddress}}},
	}
	got = translateExpr("msg . sender == owner", solModel, model.DialectInk)
	assert.True(t, strings.HasPrefix(got, "self.env().caller()"), got)
	assert.Contains(t, got, "self.owner")
}
