/*

Package cf implements user-user collaborative filtering over sparse rating
matrices.

The pipeline is: hold one rating per user out of the matrix (target.go),
weight the remaining users by a decayed Pearson similarity (similarity.go,
optionally precomputed in bulk by matrix.go), aggregate their deviations into
a predicted rating (predict.go), and score predictions against the held-out
truth by RMSE over repeated random rounds (evaluator.go).

*/
package cf
