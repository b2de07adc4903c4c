/*

Process of compilation

Frontend (lexer, parser) ->
Abstract Syntax Tree as JSON (ast.Decode) ->
	analyze ->
Checked Unit ->
	back ->
LLVM Module (llir) ->
	build: emit llvm ->
LLVM IR Text (.ll)

LLVM Module ->
	build: write bitcode ->
Transient Bitcode (.bc) ->
	opt ->
Optimized Bitcode ->
	clang -c ->
Binary Object (.o)
	or clang ->
Binary Executable

Errors on the way are reported by diag against the original source text.

*/
package compiler
