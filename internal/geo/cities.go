package geo

var knownCities = []City{
	{Name: "Paris", Lat: 48.8566, Lon: 2.3522},
	{Name: "Lyon", Lat: 45.7640, Lon: 4.8357},
	{Name: "Marseille", Lat: 43.2965, Lon: 5.3698},
	{Name: "Toulouse", Lat: 43.6047, Lon: 1.4442},
	{Name: "Nice", Lat: 43.7102, Lon: 7.2620},
	{Name: "Nantes", Lat: 47.2184, Lon: -1.5536},
	{Name: "Strasbourg", Lat: 48.5734, Lon: 7.7521},
	{Name: "Bordeaux", Lat: 44.8378, Lon: -0.5792},
	{Name: "Lille", Lat: 50.6292, Lon: 3.0573},
	{Name: "Rennes", Lat: 48.1173, Lon: -1.6778},
	{Name: "Montpellier", Lat: 43.6108, Lon: 3.8767},
	{Name: "Grenoble", Lat: 45.1885, Lon: 5.7245},
	{Name: "Reims", Lat: 49.2583, Lon: 4.0317},
	{Name: "Le Havre", Lat: 49.4944, Lon: 0.1079},
	{Name: "Saint-Étienne", Lat: 45.4397, Lon: 4.3872},
	{Name: "Toulon", Lat: 43.1242, Lon: 5.9280},
	{Name: "Angers", Lat: 47.4784, Lon: -0.5632},
	{Name: "Dijon", Lat: 47.3220, Lon: 5.0415},
	{Name: "Brest", Lat: 48.3905, Lon: -4.4861},
	{Name: "Le Mans", Lat: 48.0077, Lon: 0.1984},
	{Name: "Clermont-Ferrand", Lat: 45.7772, Lon: 3.0870},
	{Name: "Amiens", Lat: 49.8941, Lon: 2.2958},
	{Name: "Aix-en-Provence", Lat: 43.5297, Lon: 5.4474},
	{Name: "Limoges", Lat: 45.8336, Lon: 1.2611},
	{Name: "Tours", Lat: 47.3941, Lon: 0.6848},
	{Name: "Orléans", Lat: 47.9029, Lon: 1.9093},
	{Name: "Metz", Lat: 49.1193, Lon: 6.1757},
	{Name: "Besançon", Lat: 47.2380, Lon: 6.0243},
	{Name: "Perpignan", Lat: 42.6886, Lon: 2.8948},
	{Name: "Caen", Lat: 49.1829, Lon: -0.3707},
	{Name: "Rouen", Lat: 49.4432, Lon: 1.0993},
	{Name: "Nancy", Lat: 48.6921, Lon: 6.1844},
	{Name: "Argenteuil", Lat: 48.9474, Lon: 2.2464},
	{Name: "Montreuil", Lat: 48.8634, Lon: 2.4428},
	{Name: "Mulhouse", Lat: 47.7508, Lon: 7.3359},
	{Name: "Pau", Lat: 43.2951, Lon: -0.3708},
	{Name: "Avignon", Lat: 43.9493, Lon: 4.8055},
}
