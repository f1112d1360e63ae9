// Package triagetest provides small vitals tables shared by tests.
package triagetest

import "strings"

const Header = "Age,Gender,Body_Temperature,Heart_Rate,Respiratory_Rate,Blood_Pressure_Systolic,Blood_Pressure_Diastolic,Oxygen_Saturation,Symptom_Score,Final_Triage_Label"

// Labels are the classes of Balanced in sorted order.
var Labels = []string{"Emergency", "Non-Urgent", "Urgent"}

// Balanced is a 20-row table with three well separated classes (7/6/7).
var Balanced = []string{
	"60,M,102.5,125,28,85,50,86,8,Emergency",
	"40,F,100.4,100,21,105,70,93,5,Urgent",
	"20,M,98.2,70,14,118,78,98,1,Non-Urgent",
	"63,F,102.7,127,29,86,51,87,9,Emergency",
	"44,M,100.5,102,22,107,71,94,6,Urgent",
	"25,F,98.3,73,15,120,79,99,2,Non-Urgent",
	"66,M,102.9,129,30,87,52,88,8,Emergency",
	"48,F,100.6,104,23,109,72,95,5,Urgent",
	"30,M,98.4,76,16,122,80,98,3,Non-Urgent",
	"69,F,103.1,131,31,88,53,89,9,Emergency",
	"52,M,100.7,106,21,111,73,93,6,Urgent",
	"35,F,98.5,79,14,124,81,99,1,Non-Urgent",
	"72,M,103.3,133,32,89,54,90,8,Emergency",
	"56,F,100.8,108,22,113,74,94,5,Urgent",
	"40,M,98.6,82,15,126,82,98,2,Non-Urgent",
	"75,F,103.5,135,33,90,55,91,9,Emergency",
	"60,M,100.9,110,23,115,75,95,6,Urgent",
	"45,F,98.7,85,16,128,83,99,3,Non-Urgent",
	"78,M,103.7,137,34,91,56,92,8,Emergency",
	"64,F,101.0,112,21,117,76,93,5,Urgent",
}

// Singleton adds a class represented by one row to Balanced.
var Singleton = "81,M,104.0,140,36,80,45,82,10,Resuscitation"

// CSV joins the header and rows into a table.
func CSV(rows ...string) string {
	return Header + "\n" + strings.Join(rows, "\n") + "\n"
}

// BalancedCSV is CSV(Balanced...).
func BalancedCSV() string {
	return CSV(Balanced...)
}

// ImbalancedCSV is Balanced plus Singleton.
func ImbalancedCSV() string {
	return CSV(append(append([]string(nil), Balanced...), Singleton)...)
}
