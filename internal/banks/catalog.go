/**
 * @description
 * This file holds the static bank catalog: the reference list of
 * (bank name, institution code) pairs used for NUBAN-based bank detection.
 * The catalog is compiled in and loaded once at process start; resolution
 * iterates it in declaration order.
 */

package banks

// Bank is one read-only catalog entry.
type Bank struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Catalog is the institution list checked against NUBAN checksums, in the
// order candidates are attempted during resolution.
var Catalog = []Bank{
	{Name: "Access Bank", Code: "044"},
	{Name: "Citibank Nigeria", Code: "023"},
	{Name: "Ecobank Nigeria", Code: "050"},
	{Name: "Fidelity Bank", Code: "070"},
	{Name: "First Bank of Nigeria", Code: "011"},
	{Name: "First City Monument Bank", Code: "214"},
	{Name: "Globus Bank", Code: "103"},
	{Name: "Guaranty Trust Bank", Code: "058"},
	{Name: "Heritage Bank", Code: "030"},
	{Name: "Keystone Bank", Code: "082"},
	{Name: "Polaris Bank", Code: "076"},
	{Name: "Providus Bank", Code: "101"},
	{Name: "Stanbic IBTC Bank", Code: "221"},
	{Name: "Standard Chartered Bank", Code: "068"},
	{Name: "Sterling Bank", Code: "232"},
	{Name: "SunTrust Bank", Code: "100"},
	{Name: "Union Bank of Nigeria", Code: "032"},
	{Name: "United Bank for Africa", Code: "033"},
	{Name: "Unity Bank", Code: "215"},
	{Name: "Wema Bank", Code: "035"},
	{Name: "Zenith Bank", Code: "057"},
	{Name: "Jaiz Bank", Code: "301"},
	{Name: "Titan Trust Bank", Code: "102"},
	{Name: "Kuda Microfinance Bank", Code: "090267"},
	{Name: "OPay Digital Services", Code: "100004"},
	{Name: "PalmPay", Code: "100033"},
	{Name: "Moniepoint Microfinance Bank", Code: "090405"},
}

// NameForCode returns the catalog bank name for an institution code, or the
// code itself when the institution is not in the catalog.
func NameForCode(code string) string {
	for _, b := range Catalog {
		if b.Code == code {
			return b.Name
		}
	}
	return code
}
