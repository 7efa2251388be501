// Package methane predicts enteric methane emissions from a cow's daily
// intake, in both exact and linearized forms.
package methane
