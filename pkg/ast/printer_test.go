package ast

import "testing"

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"classic", Bin("*", Un("-", Num(123)), Group(Num(45.67))), "(* (- 123) (group 45.67))"},
		{"literals", Call(ID("f"), Str("a\"b"), Bool(true), Nil()), `(call f "a\"b" true nil)`},
		{"logical", Or(And(ID("a"), ID("b")), ID("c")), "(or (and a b) c)"},
		{"assign", Assign("x", Num(1)), "(= x 1)"},
		{"var without initializer", Var("x", nil), "(var x)"},
		{"if else", If(ID("c"), PrintStmt(Num(1)), PrintStmt(Num(2))), "(if c (print 1) (print 2))"},
		{"while", While(Bool(true), Block(ExprStmt(Call(ID("tick"))))), "(while true (block (; (call tick))))"},
		{"function", Fn("add", []string{"a", "b"}, Ret(Bin("+", ID("a"), ID("b")))), "(fun add (a b) (return (+ a b)))"},
		{"bare return", Ret(nil), "(return)"},
		{"nil node", nil, "<nil>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Print(tc.node); got != tc.want {
				t.Fatalf("Print = %q, want %q", got, tc.want)
			}
		})
	}
}
