// Package script parses and interprets the compact batch language used to
// build document trees in one round trip:
//
//	card = FRAME(none, {name: "Card", w: 320, layoutMode: "VERTICAL"})
//	title = TEXT($card, {characters: "Hello"})   // trailing comment
//	UPDATE($title, {fontSize: 18})
//	REPARENT($title, $card, 0)
//	DELETE("12:7")
//
// The whole script is parsed and checked before anything executes. Execution
// stops at the first failing operation and keeps the effects already applied;
// wrapping a script in a checkpoint is the caller's choice.
package script
