// Package dialect renders single comparisons as dialect specific SQL.
//
// A Style turns (operator, attribute expression, bind names, values) into SQL
// text. The composer decides which operator applies to which expression; the
// style only knows how to spell it. Bind names are emitted as :name. A bind
// name starting with "&" carries an already rendered literal (plain bind) and
// is inserted verbatim without the prefix.
//
// Supported styles: oracle (default), postgres, sqlite, mssql, mysql. All of
// them share one operator table; they differ in date arithmetic, string
// concatenation, literals and a few capabilities.
package dialect
