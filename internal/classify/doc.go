// Package classify decides whether a piece of comment text is commented-out
// code.
//
// The rest of the module depends only on the Classifier capability: a
// Predict call that returns a probability distribution over
// {NOT_CODE, CODE}, reduced to a binary label by Decide. Three backends
// implement it:
//   - TokenModel: a logistic model over lexical features of the comment,
//     loaded from a JSON artifact that is fetched once on first run
//   - Heuristic: the same model with built-in weights, no artifact needed
//   - Gemini: asks a Gemini model through google.golang.org/genai
//
// Tests and callers with their own logic can wrap a plain function with Func.
package classify
